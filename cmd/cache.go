package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/cache"
)

// CacheStats prints how many identifiers each lookup bucket holds.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	lookup := r.lookup
	if lookup == nil {
		opened, err := cache.Open(r.config.Cache.Path)
		if err != nil {
			return fmt.Errorf("failed to open lookup cache: %w", err)
		}
		defer opened.Close()
		lookup = opened
	}

	path := r.config.Cache.Path
	if path == "" {
		path = "(memory)"
	}
	r.writePlainHeader("Lookup cache: " + path)
	for _, bucket := range [][]byte{cache.BucketReleaseGroups, cache.BucketArtists, cache.BucketWikidata} {
		r.writePlain("%-16s %d\n", string(bucket), lookup.Len(bucket))
	}
	return nil
}
