// package formatter renders the shelf to the export formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Formats lists the accepted export format names.
var Formats = []string{"json", "csv", "markdown", "txt"}

// Record is the exported shape of an item.
type Record struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Name        string    `json:"name,omitempty"`
	Year        string    `json:"year,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	AddedAt     time.Time `json:"added_at"`
	Listened    bool      `json:"listened"`
	ListenAgain bool      `json:"listen_again"`
	Position    int       `json:"position"`
}

// Records converts items, in the order given, to export records.
func Records(items []models.Item) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = Record{
			ID:          item.ID,
			Kind:        string(item.Kind),
			Title:       item.Title,
			Artist:      item.Artist,
			Name:        item.Name,
			Year:        item.Year,
			ExternalID:  item.ExternalID,
			CoverURL:    item.CoverURL,
			SourceURL:   item.SourceURL,
			AddedAt:     item.AddedAt,
			Listened:    item.Listened,
			ListenAgain: item.ListenAgain,
			Position:    i,
		}
	}
	return records
}

// ExportToJSON renders items as an indented JSON array.
func ExportToJSON(items []models.Item) ([]byte, error) {
	data, err := json.MarshalIndent(Records(items), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV renders items with columns: Position, ID, Kind, Artist, Title, Year, Listened, ListenAgain, Cover, Source
func ExportToCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Kind", "Artist", "Title", "Year", "Listened", "ListenAgain", "Cover", "Source"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range items {
		record := []string{
			strconv.Itoa(i),
			item.ID,
			string(item.Kind),
			item.Artist,
			item.DisplayTitle(),
			item.Year,
			strconv.FormatBool(item.Listened),
			strconv.FormatBool(item.ListenAgain),
			item.CoverURL,
			item.SourceURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders items as a checklist, listened items checked, with covers inlined
func ExportToMarkdown(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Shelf\n\n")
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	for _, item := range items {
		check := " "
		if item.Listened {
			check = "x"
		}
		buf.WriteString(fmt.Sprintf("- [%s] %s", check, line(item)))
		if item.ListenAgain {
			buf.WriteString(" *(listen again)*")
		}
		buf.WriteString("\n")
		if item.HasCover() {
			buf.WriteString(fmt.Sprintf("  ![%s](%s)\n", item.DisplayTitle(), item.CoverURL))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders items one per line in "Artist - Title" form, which the line importer reads back
func ExportToText(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	for _, item := range items {
		buf.WriteString(line(item))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func line(item models.Item) string {
	switch item.Kind {
	case models.KindArtist:
		return item.Name
	case models.KindMix:
		if item.SourceURL != "" {
			return item.SourceURL
		}
	}
	if item.Artist == "" {
		return item.DisplayTitle()
	}
	return item.Artist + " - " + item.DisplayTitle()
}

// Export renders items in the named format.
func Export(items []models.Item, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ExportToJSON(items)
	case "csv":
		return ExportToCSV(items)
	case "markdown", "md":
		return ExportToMarkdown(items)
	case "txt", "text":
		return ExportToText(items)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case "csv":
		return ".csv"
	case "markdown", "md":
		return ".md"
	case "txt", "text":
		return ".txt"
	default:
		return ".json"
	}
}

// WriteExport renders items and writes them to path, creating parent directories.
//
// Defaults to shelf{ext} in the working directory.
func WriteExport(items []models.Item, format, path string) (string, error) {
	if path == "" {
		path = "shelf" + Extension(format)
	}

	data, err := Export(items, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
