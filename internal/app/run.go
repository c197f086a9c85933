package app

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/export"
	"github.com/vk/recipemap/internal/feed"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/layout"
	"github.com/vk/recipemap/internal/node"
)

// framesEvery is the number of layout steps between feed frames.
const framesEvery = 10

// Run builds the graph, lays it out, and hands the result to the configured
// exporter and feed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	res, err := a.session.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("failed to build recipe graph: %w", err)
	}
	snap := res.Snapshot
	if len(res.Diagnostics) > 0 {
		a.logger.Warn("Some catalogue rules were skipped.", "count", len(res.Diagnostics))
	}
	if snap.NodeCount() == 0 {
		a.logger.Warn("Catalogue produced an empty graph.")
	}

	var pub *feed.Publisher
	if a.config.FeedURL != "" {
		pub, err = feed.Dial(ctx, feed.Config{URL: a.config.FeedURL, Namespace: a.config.FeedNamespace})
		if err != nil {
			return err
		}
		defer pub.Close()
		if err := pub.PublishSnapshot(ctx, export.NewDocument(snap, snap.BuiltAt(), nil)); err != nil {
			return fmt.Errorf("failed to publish snapshot: %w", err)
		}
	}

	sim, err := a.runLayout(ctx, snap, pub)
	if err != nil {
		return err
	}

	if a.exporter != nil {
		if _, err := a.exporter.Export(ctx, snap, sim.Positions()); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, r := range a.config.ExportResources {
			if len(snap.NodesByOutput(node.Resource(r))) == 0 && len(snap.NodesByInput(node.Resource(r))) == 0 {
				a.logger.Warn("Resource is not used by any rule.", "resource", r)
			}
			if _, err := a.exporter.ExportResource(ctx, snap, node.Resource(r)); err != nil {
				return fmt.Errorf("resource export failed: %w", err)
			}
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// runLayout settles the layout in chunks, emitting a frame after each chunk.
func (a *App) runLayout(ctx context.Context, snap *graph.Snapshot, pub *feed.Publisher) (*layout.Simulator, error) {
	sim, err := layout.New(a.layout)
	if err != nil {
		return nil, err
	}
	sim.Initialize(snap)

	budget := a.config.LayoutSteps
	energy := math.Inf(1)
	for sim.Steps() < budget && energy >= a.config.LayoutEnergy {
		chunk := min(framesEvery, budget-sim.Steps())
		if _, energy, err = sim.Settle(ctx, chunk, a.config.LayoutEnergy); err != nil {
			return nil, fmt.Errorf("layout interrupted: %w", err)
		}
		if pub != nil {
			if err := pub.PublishFrame(ctx, feed.NewFrame(sim, energy)); err != nil {
				a.logger.Warn("Failed to publish layout frame.", "error", err)
			}
		}
	}

	b := sim.Bounds()
	a.logger.Info("Layout settled.",
		"steps", sim.Steps(),
		"energy", energy,
		"min_x", b.Min.X, "min_y", b.Min.Y,
		"max_x", b.Max.X, "max_y", b.Max.Y,
	)
	return sim, nil
}
