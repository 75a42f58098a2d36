package tasks

import (
	"fmt"

	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
)

// ExportOpts configures [Export].
type ExportOpts struct {
	Format string // json, csv, markdown, txt
	Path   string // defaults to shelf.{ext}
}

// ExportResult describes a finished export.
type ExportResult struct {
	Path  string
	Count int
}

// Export writes items, in display order, to opts.Path.
func Export(progress chan<- ProgressUpdate, items []models.Item, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = "json"
	}

	path, err := formatter.WriteExport(items, opts.Format, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}

	sendProgress(progress, exportUpdate(len(items), opts.Format, path))
	return &ExportResult{Path: path, Count: len(items)}, nil
}
