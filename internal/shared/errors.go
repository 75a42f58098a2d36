package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoMatch            = fmt.Errorf("no match found")
	ErrUnreachable        = fmt.Errorf("url not reachable")

	// Collection errors
	ErrItemNotFound = fmt.Errorf("item not found")
	ErrInvalidItem  = fmt.Errorf("invalid item")
	ErrNoCandidates = fmt.Errorf("no unlistened items with covers")
	ErrShuffleBusy  = fmt.Errorf("shuffle already in progress")
	ErrNotDragging  = fmt.Errorf("no drag in progress")
	ErrDragActive   = fmt.Errorf("drag already in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
