package builder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vk/recipemap/internal/catalogue"
	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/graphstore"
)

// Result is the outcome of a successful build.
type Result struct {
	Snapshot    *graph.Snapshot
	Diagnostics []Diagnostic
	Validation  Report
	Summary     Summary
}

// Builder runs graph builds against one catalogue.
type Builder struct {
	cat catalogue.Catalogue
	now func() time.Time
}

// New creates a builder reading from cat.
func New(cat catalogue.Catalogue) *Builder {
	return &Builder{cat: cat, now: time.Now}
}

// Build enumerates the catalogue and constructs a new snapshot. Every call
// works on its own store, so concurrent builds never share state.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	buildID := uuid.NewString()
	ctx = ctxlog.With(ctx, "build_id", buildID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	rules, err := b.cat.Rules(ctx)
	if err != nil {
		if len(rules) == 0 {
			return nil, &BuildFailedError{Reason: ReasonNoData, Err: err}
		}
		_, diags := convert(rules)
		return nil, &BuildFailedError{Reason: ReasonPartialData, Rules: len(rules), Diagnostics: diags, Err: err}
	}
	logger.Debug("Build: Catalogue enumerated.", "rules", len(rules))

	s := graphstore.New()

	diags := ingest(ctx, s, rules)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classify(ctx, s)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := validate(ctx, s)

	snap := s.Snapshot(buildID, b.now())

	summary := Summarize(snap)
	if snap.HasCycles() {
		logger.Info("Build: Graph contains cycles through non-production relationships.")
	}
	logger.Info("Build: Graph construction successful.", "summary", summary)

	return &Result{
		Snapshot:    snap,
		Diagnostics: diags,
		Validation:  report,
		Summary:     summary,
	}, nil
}
