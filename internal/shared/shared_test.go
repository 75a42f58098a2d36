package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "basic normalization",
			parts: []string{"Artist Name", "Album Title"},
			want:  "artist name|album title",
		},
		{
			name:  "extra whitespace",
			parts: []string{"  Artist   Name  ", "  Album\tTitle  "},
			want:  "artist name|album title",
		},
		{
			name:  "mixed case",
			parts: []string{"ArTiSt NaMe", "AlBuM TiTlE"},
			want:  "artist name|album title",
		},
		{
			name:  "composed and decomposed forms match",
			parts: []string{"Björk"},
			want:  "björk",
		},
		{
			name:  "single part",
			parts: []string{"Boards of Canada"},
			want:  "boards of canada",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.parts...); got != tt.want {
				t.Errorf("NormalizeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid uuid, got %q: %v", a, err)
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "component", "test")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "shelf.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("written")
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		if got := ParseLogLevel("DEBUG"); got != log.DebugLevel {
			t.Errorf("expected debug level, got %v", got)
		}
		if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
			t.Errorf("expected info fallback, got %v", got)
		}
	})
}
