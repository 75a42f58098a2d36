package artwork

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/shared"
)

// Query carries everything a provider may key on.
type Query struct {
	Artist     string
	Title      string
	Name       string
	ExternalID string
}

// Provider yields a candidate image URL for a query. An error or empty URL means no result.
type Provider struct {
	Name string
	Find func(ctx context.Context, q Query) (string, error)
}

// Checker confirms a candidate URL resolves.
type Checker interface {
	Check(ctx context.Context, rawURL string) bool
}

// CheckFunc adapts a function to [Checker].
type CheckFunc func(ctx context.Context, rawURL string) bool

// Check calls f.
func (f CheckFunc) Check(ctx context.Context, rawURL string) bool { return f(ctx, rawURL) }

// FirstReachable runs providers in order and returns the first URL that passes check, with the provider's name.
// Failures are logged at debug and the next provider runs; later providers never run after a success.
func FirstReachable(ctx context.Context, providers []Provider, q Query, check Checker, logger *log.Logger) (string, string, error) {
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		candidate, err := p.Find(ctx, q)
		switch {
		case err != nil:
			logger.Debug("provider failed", "provider", p.Name, "error", err)
			continue
		case candidate == "":
			logger.Debug("provider returned nothing", "provider", p.Name)
			continue
		case check != nil && !check.Check(ctx, candidate):
			logger.Debug("candidate unreachable", "provider", p.Name, "url", candidate)
			continue
		}
		return candidate, p.Name, nil
	}
	return "", "", shared.ErrNoMatch
}

// isNoResult reports whether err is the ordinary end of a chain rather than a cancellation.
func isNoResult(err error) bool {
	return errors.Is(err, shared.ErrNoMatch)
}
