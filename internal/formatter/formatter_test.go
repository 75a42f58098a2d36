package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	th "github.com/desertthunder/shelf/internal/testing"
)

func sampleItems() []models.Item {
	added := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	album := th.Album("a1", "Stereolab", "Dots and Loops", added)
	album.Year = "1997"
	album.CoverURL = "https://covers/a1.jpg"
	album.Listened = true
	album.ListenAgain = true

	return []models.Item{
		album,
		{ID: "r1", Kind: models.KindArtist, Name: "Broadcast", AddedAt: added},
		{ID: "m1", Kind: models.KindMix, Title: "Late Night", Artist: "dj", SourceURL: "https://www.mixcloud.com/dj/late-night/", AddedAt: added},
	}
}

func TestExporters(t *testing.T) {
	items := sampleItems()

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(items)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(records) != 3 || records[0].Kind != "album" || records[2].Position != 2 {
			t.Errorf("unexpected records: %+v", records)
		}
		if !records[0].Listened || !records[0].ListenAgain {
			t.Error("flags should be exported")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(items)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,ID,Kind,Artist,Title,Year,Listened,ListenAgain,Cover,Source") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "0,a1,album,Stereolab,Dots and Loops,1997,true,true,https://covers/a1.jpg,") {
			t.Errorf("CSV missing album row, got: %s", output)
		}
		if !strings.Contains(output, "1,r1,artist,,Broadcast,") {
			t.Errorf("CSV missing artist row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(items)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"**Items**: 3",
			"- [x] Stereolab - Dots and Loops *(listen again)*",
			"![Dots and Loops](https://covers/a1.jpg)",
			"- [ ] Broadcast",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(items)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Stereolab - Dots and Loops\nBroadcast\nhttps://www.mixcloud.com/dj/late-night/\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, string(data))
		}
	})

	t.Run("Export rejects unknown formats", func(t *testing.T) {
		if _, err := Export(items, "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	items := sampleItems()

	tt := []struct {
		format string
		ext    string
		want   string
	}{
		{format: "json", ext: ".json", want: `"kind": "artist"`},
		{format: "csv", ext: ".csv", want: "Position,ID"},
		{format: "markdown", ext: ".md", want: "# Shelf"},
		{format: "txt", ext: ".txt", want: "Broadcast\n"},
	}

	for _, tc := range tt {
		t.Run(tc.format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out"+Extension(tc.format))
			written, err := WriteExport(items, tc.format, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if filepath.Ext(written) != tc.ext {
				t.Errorf("expected %s extension, got %s", tc.ext, written)
			}

			th.AssertFileExists(t, written)
			if content := th.MustReadFile(t, written); !strings.Contains(content, tc.want) {
				t.Errorf("expected %q in output, got:\n%s", tc.want, content)
			}
		})
	}
}
