package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/shelf"
	tu "github.com/desertthunder/shelf/internal/testing"
)

// newTestRunner returns a runner over an in-memory shelf seeded with items.
func newTestRunner(t *testing.T, items ...models.Item) (*Runner, *bytes.Buffer, *tu.MockRepository) {
	t.Helper()
	logger := log.New(io.Discard)
	repo := tu.NewMockRepository(items...)
	s := shelf.New(repo, shelf.Options{Catalog: &tu.MockCatalog{}, Logger: logger})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: logger, Output: output, Shelf: s})
	return runner, output, repo
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "shelf", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"shelf"}, args...))
}

func fixtures() []models.Item {
	older := tu.Album("aaaa1111", "Stereolab", "Dots and Loops", time.Now().Add(-48*time.Hour))
	newer := tu.Album("bbbb2222", "Broadcast", "Haha Sound", time.Now().Add(-time.Hour))
	newer.CoverURL = "https://covers/b.jpg"
	return []models.Item{older, newer}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient == nil || runner.httpClient.Timeout != runner.config.Providers.HTTPTimeout.Duration {
				t.Error("expected httpClient with the configured timeout")
			}
		})

		t.Run("registers every command", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			names := map[string]bool{}
			for _, cmd := range runner.register() {
				names[cmd.Name] = true
			}
			for _, want := range []string{"setup", "list", "add", "search", "listened", "again", "remove", "retry", "open", "move", "export", "rack", "cache", "tui"} {
				if !names[want] {
					t.Errorf("missing command %q", want)
				}
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		if err := NewRunner(RunnerOpts{Output: &tu.FWriter{}}).writePlainln("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestFindItem(t *testing.T) {
	runner, _, _ := newTestRunner(t, append(fixtures(), tu.Album("aaaa9999", "X", "Y", time.Now()))...)

	tt := []struct {
		name string
		ref  string
		want string
		err  error
	}{
		{name: "exact id", ref: "bbbb2222", want: "bbbb2222"},
		{name: "unique prefix", ref: "bbbb", want: "bbbb2222"},
		{name: "ambiguous prefix", ref: "aaaa", err: shared.ErrInvalidArgument},
		{name: "unknown", ref: "zzzz", err: shared.ErrItemNotFound},
		{name: "empty", ref: " ", err: shared.ErrMissingArgument},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			item, err := findItem(runner.shelf, tc.ref)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Errorf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil || item.ID != tc.want {
				t.Errorf("expected %s, got %s (%v)", tc.want, item.ID, err)
			}
		})
	}
}

func TestCommands(t *testing.T) {
	t.Run("list renders a table", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, fixtures()...)

		if err := run(t, runner, "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := output.String()
		if strings.Index(out, "Haha Sound") > strings.Index(out, "Dots and Loops") {
			t.Errorf("newest item should be listed first:\n%s", out)
		}
		if !strings.Contains(strings.ToLower(out), "2 items") || !strings.Contains(out, "hour ago") {
			t.Errorf("expected footer and relative time:\n%s", out)
		}
	})

	t.Run("list --json", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, fixtures()...)

		if err := run(t, runner, "list", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"id": "bbbb2222"`) {
			t.Errorf("expected JSON records, got %s", output.String())
		}
	})

	t.Run("list on an empty shelf", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)

		if err := run(t, runner, "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "empty") {
			t.Errorf("expected empty message, got %s", output.String())
		}
	})

	t.Run("add a line", func(t *testing.T) {
		runner, output, repo := newTestRunner(t)

		if err := run(t, runner, "add", "Broadcast - Tender Buttons"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.CallCount("Create") != 1 {
			t.Error("expected the item to be persisted")
		}
		if !strings.Contains(output.String(), "Added album") || !strings.Contains(output.String(), "No cover found") {
			t.Errorf("unexpected output %s", output.String())
		}
	})

	t.Run("add without input", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "add"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("add --file imports every line", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		runner.config.Timing.ImportDelay = shared.Duration{Duration: time.Millisecond}

		path := filepath.Join(t.TempDir(), "lines.txt")
		if err := os.WriteFile(path, []byte("A - B\n\nC\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := run(t, runner, "add", "--file", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "2 items imported") {
			t.Errorf("expected summary, got %s", output.String())
		}
	})

	t.Run("listened toggles by prefix", func(t *testing.T) {
		runner, output, repo := newTestRunner(t, fixtures()...)

		if err := run(t, runner, "listened", "bbbb"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if row, _ := repo.Row("bbbb2222"); !row.Listened {
			t.Error("expected listened to be persisted")
		}
		if !strings.Contains(output.String(), "listened=true") {
			t.Errorf("unexpected output %s", output.String())
		}
	})

	t.Run("move commits order", func(t *testing.T) {
		runner, _, repo := newTestRunner(t, fixtures()...)

		if err := run(t, runner, "move", "--to", "1", "aaaa1111"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if row, _ := repo.Row("aaaa1111"); row.Order == nil || *row.Order != 0 {
			t.Errorf("expected order 0, got %v", row.Order)
		}
		if err := run(t, runner, "move", "--to", "0", "aaaa1111"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		runner, _, repo := newTestRunner(t, fixtures()...)

		if err := run(t, runner, "remove", "aaaa1111"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := repo.Row("aaaa1111"); ok {
			t.Error("row should be deleted")
		}
	})

	t.Run("open uses the cover url", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, fixtures()...)
		var opened string
		openBrowser = func(u string) error { opened = u; return nil }
		t.Cleanup(func() { openBrowser = shared.OpenBrowser })

		if err := run(t, runner, "open", "bbbb"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opened != "https://covers/b.jpg" || !strings.Contains(output.String(), "Opened") {
			t.Errorf("opened %q, output %s", opened, output.String())
		}
		if err := run(t, runner, "open", "aaaa"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for an item without cover, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, fixtures()...)
		path := filepath.Join(t.TempDir(), "shelf.md")

		if err := run(t, runner, "export", "--format", "markdown", "--output", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Broadcast - Haha Sound") {
			t.Errorf("unexpected export:\n%s", content)
		}
	})

	t.Run("rack shuffle", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, fixtures()...)
		runner.config.Timing.SpinDuration = shared.Duration{Duration: 10 * time.Millisecond}
		runner.config.Timing.SnapDuration = shared.Duration{Duration: time.Millisecond}
		runner.config.Timing.SettleDuration = shared.Duration{Duration: 10 * time.Millisecond}

		if err := run(t, runner, "rack", "--shuffle"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Haha Sound") {
			t.Errorf("only the covered item can be picked, got %s", output.String())
		}
	})

	t.Run("setup creates the database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "shelf.db")
		conf := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
		if err := os.WriteFile(configPath, []byte(conf), 0644); err != nil {
			t.Fatal(err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard), Output: output})
		if err := run(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %s", output.String())
		}
	})
}
