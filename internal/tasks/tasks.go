package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/shelf/internal/models"
)

// DefaultImportDelay is the pause between imported lines.
const DefaultImportDelay = time.Second

// LineImporter adds a single line of manual entry to the collection.
type LineImporter interface {
	ImportLine(ctx context.Context, line string) (models.Item, bool)
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int           // Items added
	Total    int           // Non-blank lines processed
	Items    []models.Item // Added items, in input order
}

// Summary is the completion message shown to the user.
func (r ImportResult) Summary() string {
	return fmt.Sprintf("%d items imported", r.Imported)
}

// Importer feeds lines to a [LineImporter] one at a time.
type Importer struct {
	target  LineImporter
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewImporter creates an Importer that waits delay between lines.
func NewImporter(target LineImporter, delay time.Duration, logger *log.Logger) *Importer {
	if delay <= 0 {
		delay = DefaultImportDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{
		target:  target,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  logger.With("component", "import"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import adds each non-blank line in order. Cancelling ctx stops between lines and returns what was imported so
// far along with the context error.
func (i *Importer) Import(ctx context.Context, progress chan<- ProgressUpdate, lines []string) (*ImportResult, error) {
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}

	result := &ImportResult{Total: len(entries)}
	sendProgress(progress, importStartedUpdate(len(entries)))

	for n, line := range entries {
		if err := i.limiter.Wait(ctx); err != nil {
			i.logger.Warn("import interrupted", "imported", result.Imported, "total", result.Total)
			return result, err
		}

		sendProgress(progress, importLineUpdate(n+1, len(entries), line))

		item, ok := i.target.ImportLine(ctx, line)
		if !ok {
			continue
		}
		result.Imported++
		result.Items = append(result.Items, item)
	}

	i.logger.Info("import finished", "imported", result.Imported, "total", result.Total)
	sendProgress(progress, importDoneUpdate(result))
	return result, nil
}

// ReadLines splits r into lines for [Importer.Import].
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return lines, nil
}
