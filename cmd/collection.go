package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/artwork"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/shelf"
	"github.com/desertthunder/shelf/internal/tasks"
)

// List prints the shelf in display order.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	items := s.Items()
	if cmd.Bool("unlistened") {
		filtered := items[:0:0]
		for _, item := range items {
			if !item.Listened {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.Records(items), true)
	}

	r.renderItems(items)
	return nil
}

func (r *Runner) renderItems(items []models.Item) {
	if len(items) == 0 {
		r.writePlain("The shelf is empty. Add something with 'shelf add \"Artist - Title\"'.\n")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.output)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "ID", "Kind", "Title", "By", "Listened", "Cover", "Added"})
	for i, item := range items {
		listened := ""
		switch {
		case item.Listened && item.ListenAgain:
			listened = "✓ again"
		case item.Listened:
			listened = "✓"
		case item.ListenAgain:
			listened = "again"
		}
		cover := "-"
		if item.HasCover() {
			cover = "✓"
		}
		t.AppendRow(table.Row{
			i + 1,
			shortID(item.ID),
			item.Kind,
			item.DisplayTitle(),
			item.Subtitle(),
			listened,
			cover,
			humanize.Time(item.AddedAt),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", fmt.Sprintf("%d items", len(items))})
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Add adds a manual entry, a mix URL or every line of a file.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	switch {
	case cmd.String("file") != "":
		return r.importFile(ctx, cmd.String("file"))

	case cmd.String("mix") != "":
		item, err := s.AddMixByURL(ctx, cmd.String("mix"))
		if err != nil {
			return fmt.Errorf("failed to add mix: %w", err)
		}
		r.writePlain("✓ Added mix: %s\n", item.Label())
		return nil
	}

	line := cmd.StringArg("line")
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("%w: a line, --file or --mix", shared.ErrMissingArgument)
	}

	item, ok := s.ImportLine(ctx, line)
	if !ok {
		return fmt.Errorf("%w: nothing to add", shared.ErrInvalidInput)
	}
	s.Pipeline().Wait()
	r.reportAdded(item.ID)
	return nil
}

func (r *Runner) reportAdded(id string) {
	item, ok := r.shelf.Store().Get(id)
	if !ok {
		return
	}
	r.writePlain("✓ Added %s: %s\n", item.Kind, item.Label())
	if item.HasCover() {
		r.writePlain("  Cover: %s\n", item.CoverURL)
	} else {
		r.writePlain("  No cover found (try 'shelf retry %s' later)\n", shortID(item.ID))
	}
}

func (r *Runner) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	lines, err := tasks.ReadLines(f)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.ImportLines && update.Step > 0 {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	importer := tasks.NewImporter(r.shelf, r.config.Timing.ImportDelay.Duration, r.logger)
	result, err := importer.Import(ctx, progress, lines)
	close(progress)
	<-done

	r.shelf.Pipeline().Wait()
	if result != nil {
		r.writePlainln("%s", result.Summary())
	}
	return err
}

// Search prints catalog hits, albums first. --pick adds one of them.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if !shelf.SearchText(query) {
		return fmt.Errorf("%w: query needs at least two characters on one line", shared.ErrInvalidArgument)
	}

	results, err := s.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	var mixes []models.MixResult
	if cmd.Bool("mixes") {
		if mixes, err = s.SearchMixes(ctx, query); err != nil {
			r.logger.Warn("mix search failed", "error", err)
		}
	}

	if pick := cmd.Int("pick"); pick > 0 {
		return r.pick(ctx, results, mixes, pick)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"albums": results.Albums, "artists": results.Artists, "mixes": mixes}, true)
	}

	n := 0
	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	for _, album := range results.Albums {
		n++
		r.writePlain("%2d. [album]  %s - %s (%s)\n", n, album.Artist, album.Title, album.Year)
	}
	for _, artist := range results.Artists {
		n++
		desc := artist.Name
		if artist.Disambiguation != "" {
			desc += " (" + artist.Disambiguation + ")"
		}
		r.writePlain("%2d. [artist] %s\n", n, desc)
	}
	for _, mix := range mixes {
		n++
		r.writePlain("%2d. [mix]    %s - %s\n", n, mix.Artist, mix.Title)
	}
	if n == 0 {
		r.writePlain("No matches.\n")
	}
	return nil
}

func (r *Runner) pick(ctx context.Context, results models.SearchResults, mixes []models.MixResult, n int) error {
	var item models.Item
	switch i := n - 1; {
	case i < len(results.Albums):
		item = r.shelf.AddAlbum(ctx, results.Albums[i])
	case i < results.Len():
		item = r.shelf.AddArtist(ctx, results.Artists[i-len(results.Albums)])
	case i < results.Len()+len(mixes):
		item = r.shelf.AddMix(ctx, mixes[i-results.Len()])
	default:
		return fmt.Errorf("%w: no result %d", shared.ErrInvalidArgument, n)
	}
	r.shelf.Pipeline().Wait()
	r.reportAdded(item.ID)
	return nil
}

// Listened toggles the listened flag.
func (r *Runner) Listened(ctx context.Context, cmd *cli.Command) error {
	return r.toggle(ctx, cmd, "listened")
}

// Again toggles the listen-again flag.
func (r *Runner) Again(ctx context.Context, cmd *cli.Command) error {
	return r.toggle(ctx, cmd, "again")
}

func (r *Runner) toggle(ctx context.Context, cmd *cli.Command, field string) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	item, err := findItem(s, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if field == "again" {
		item, err = s.ToggleListenAgain(ctx, item.ID)
	} else {
		item, err = s.ToggleListened(ctx, item.ID)
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ %s: listened=%t, listen again=%t\n", item.Label(), item.Listened, item.ListenAgain)
	return nil
}

// Remove deletes an item.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	item, err := findItem(s, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := s.Remove(ctx, item.ID); err != nil {
		return err
	}
	r.writePlain("✓ Removed %s\n", item.Label())
	return nil
}

var openBrowser = shared.OpenBrowser

// Open launches the browser on a mix's source page, otherwise on the item's cover.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	item, err := findItem(s, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	target := item.CoverURL
	if item.Kind == models.KindMix && item.SourceURL != "" {
		target = item.SourceURL
	}
	if target == "" {
		return fmt.Errorf("%w: %s has no cover or page to open", shared.ErrInvalidArgument, shortID(item.ID))
	}
	if err := openBrowser(target); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	r.writePlain("Opened %s\n", target)
	return nil
}

// Retry re-runs artwork resolution and waits for it.
func (r *Runner) Retry(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	item, err := findItem(s, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if _, err := s.RetryArtwork(ctx, item.ID); err != nil {
		return err
	}
	s.Pipeline().Wait()

	status := s.Pipeline().Status(item.ID)
	item, _ = s.Store().Get(item.ID)
	if status == artwork.StatusResolved {
		r.writePlain("✓ Cover found for %s: %s\n", item.Label(), item.CoverURL)
	} else {
		r.writePlain("No cover found for %s\n", item.Label())
	}
	return nil
}

// Move places an item at a 1-based position and commits the order.
func (r *Runner) Move(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	item, err := findItem(s, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	to := cmd.Int("to")
	if to < 1 {
		return fmt.Errorf("%w: --to must be 1 or more", shared.ErrInvalidArgument)
	}

	updates, err := s.Move(ctx, item.ID, to-1)
	if err != nil {
		return err
	}
	r.writePlain("✓ Moved %s; order saved for %d items\n", item.Label(), len(updates))
	return nil
}

// Export writes the shelf to a file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	result, err := tasks.Export(nil, s.Items(), tasks.ExportOpts{
		Format: cmd.String("format"),
		Path:   cmd.String("output"),
	})
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d items to %s\n", result.Count, result.Path)
	return nil
}
