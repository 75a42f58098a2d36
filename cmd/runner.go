package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/artwork"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/shelf"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, lookup cache and shelf are opened on first use so commands like setup run without them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	lookup *cache.LookupCache
	shelf  *shelf.Shelf
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Shelf      *shelf.Shelf // preloaded shelf; skips opening the database
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Providers.HTTPTimeout.Duration}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		shelf:      opts.Shelf,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, listCommand, addCommand, searchCommand, listenedCommand, againCommand, removeCommand,
		retryCommand, openCommand, moveCommand, exportCommand, rackCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger. Must be called before the shelf is opened.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database and the lookup cache.
func (r *Runner) Close() {
	if r.lookup != nil {
		if err := r.lookup.Close(); err != nil {
			r.logger.Warn("failed to close lookup cache", "error", err)
		}
		r.lookup = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
	}
}

// open returns the loaded shelf, wiring the row store, lookup cache and providers on first use.
func (r *Runner) open(ctx context.Context) (*shelf.Shelf, error) {
	if r.shelf != nil {
		return r.shelf, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if applied, err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	} else if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}
	r.db = db

	lookup, err := cache.Open(r.config.Cache.Path)
	if err != nil {
		r.logger.Warn("lookup cache unavailable, keeping lookups in memory", "path", r.config.Cache.Path, "error", err)
		lookup, _ = cache.Open("")
	}
	r.lookup = lookup

	s := shelf.New(repositories.NewItemRepository(db), r.shelfOptions(lookup))
	if err := s.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load shelf: %w", err)
	}
	r.shelf = s
	return s, nil
}

// shelfOptions builds the catalog, mix and artwork collaborators from the provider config.
func (r *Runner) shelfOptions(lookups services.Lookups) shelf.Options {
	p := r.config.Providers
	client := services.NewClient(r.httpClient, p.UserAgent, p.HTTPTimeout.Duration)
	musicbrainz := services.NewMusicBrainz(client, p.MusicBrainzURL, nil, lookups, shared.WithLogger(r.logger, "service", "musicbrainz"))

	sources := artwork.Sources{
		Releases:  musicbrainz,
		Artists:   musicbrainz,
		Covers:    services.NewCoverArtArchive(p.CoverArtURL),
		Community: services.NewDiscogs(client, p.DiscogsURL),
		Photos:    services.NewAudioDB(client, p.AudioDBURL, p.AudioDBKey),
		Linker:    musicbrainz,
		Files:     services.NewWikidata(client, p.WikidataURL),
		Thumbs:    services.NewCommons(p.CommonsURL),
	}
	if p.SpotifyEnabled() {
		spotify, err := services.NewSpotify(client, p.SpotifyClientID, p.SpotifyClientSecret, p.SpotifyTokenURL, p.SpotifyAPIURL)
		if err != nil {
			r.logger.Warn("spotify disabled", "error", err)
		} else {
			sources.Commercial = spotify
		}
	}

	return shelf.Options{
		Catalog:       musicbrainz,
		Mixes:         services.NewMixcloud(client, p.MixcloudURL, p.MixcloudOEmbedURL),
		Chains:        artwork.DefaultChains(sources),
		Checker:       services.NewReachability(client),
		HoverThrottle: r.config.Timing.HoverThrottle.Duration,
		Logger:        r.logger,
	}
}

// findItem resolves ref to an item by exact id or unique id prefix.
func findItem(s *shelf.Shelf, ref string) (models.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Item{}, fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}
	if item, ok := s.Store().Get(ref); ok {
		return item, nil
	}

	var found []models.Item
	for _, item := range s.Items() {
		if strings.HasPrefix(item.ID, ref) {
			found = append(found, item)
		}
	}
	switch len(found) {
	case 0:
		return models.Item{}, fmt.Errorf("%w: %s", shared.ErrItemNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return models.Item{}, fmt.Errorf("%w: %q matches %d items", shared.ErrInvalidArgument, ref, len(found))
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
