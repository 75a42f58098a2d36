package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/rack"
)

func (r *Runner) rackController() *rack.Controller {
	t := r.config.Timing
	return rack.New(rack.Options{
		GestureInterval: t.GestureInterval.Duration,
		SpinDuration:    t.SpinDuration.Duration,
		SnapDuration:    t.SnapDuration.Duration,
		SettleDuration:  t.SettleDuration.Duration,
		Logger:          r.logger,
	})
}

// Rack prints the rack. With --shuffle it runs a spin against the wall clock and prints the pick.
func (r *Runner) Rack(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	controller := r.rackController()
	controller.SetItems(s.Items())
	items := controller.Items()

	if !cmd.Bool("shuffle") {
		r.writePlainHeader(fmt.Sprintf("Rack (%d covers)", len(items)))
		for i, item := range items {
			r.writePlain("%2d. %s\n", i+1, item.Label())
		}
		return nil
	}

	if _, err := controller.Shuffle(time.Now()); err != nil {
		return err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for controller.Shuffling() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			controller.Tick(now)
		}
	}

	item, ok := controller.Current()
	if !ok {
		return nil
	}
	r.writePlain("▶ %s\n", item.Label())
	if item.CoverURL != "" {
		r.writePlain("   %s\n", item.CoverURL)
	}
	return nil
}
