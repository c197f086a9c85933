// Package session owns the single-build-in-flight worker and the atomic
// publication of graph snapshots to concurrent readers.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/recipemap/internal/builder"
	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/metrics"
)

// ErrBuildInProgress is returned when a build is requested while another one
// is still running.
var ErrBuildInProgress = errors.New("a graph build is already in progress")

// Builder produces build results. *builder.Builder satisfies it.
type Builder interface {
	Build(ctx context.Context) (*builder.Result, error)
}

// Outcome is delivered once per started build.
type Outcome struct {
	Result *builder.Result
	Err    error
}

// Manager runs builds one at a time and publishes their snapshots.
type Manager struct {
	b       Builder
	running atomic.Bool
	current atomic.Pointer[graph.Snapshot]

	mu          sync.Mutex
	subscribers []func(*graph.Snapshot)
	wg          sync.WaitGroup
}

// New creates a manager around b. Until the first successful build Current
// returns nil.
func New(b Builder) *Manager {
	return &Manager{b: b}
}

// Current returns the most recently published snapshot, or nil.
func (m *Manager) Current() *graph.Snapshot {
	return m.current.Load()
}

// Running reports whether a build is in flight.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Subscribe registers fn to be called with every newly published snapshot.
// Callbacks run on the build goroutine after publication.
func (m *Manager) Subscribe(fn func(*graph.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Start launches a build on a dedicated goroutine. It returns
// ErrBuildInProgress if one is already running. The returned channel
// receives exactly one Outcome and is then closed. A result whose context was
// canceled before completion is discarded, not published.
func (m *Manager) Start(ctx context.Context) (<-chan Outcome, error) {
	if !m.running.CompareAndSwap(false, true) {
		metrics.BuildsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ErrBuildInProgress
	}

	done := make(chan Outcome, 1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)
		defer m.running.Store(false)
		done <- m.run(ctx)
	}()
	return done, nil
}

// Rebuild starts a build and waits for it. If ctx ends first, Rebuild returns
// ctx.Err() and the build's result is discarded once it finishes.
func (m *Manager) Rebuild(ctx context.Context) (*builder.Result, error) {
	done, err := m.Start(ctx)
	if err != nil {
		return nil, err
	}
	select {
	case out := <-done:
		return out.Result, out.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until no build goroutine is running.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) Outcome {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	res, err := m.b.Build(ctx)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if ctx.Err() != nil {
			outcome = metrics.OutcomeDiscard
		}
		metrics.BuildsTotal.WithLabelValues(outcome).Inc()
		logger.Error("Graph build failed.", "error", err)
		return Outcome{Err: err}
	}
	if err := ctx.Err(); err != nil {
		metrics.BuildsTotal.WithLabelValues(metrics.OutcomeDiscard).Inc()
		logger.Warn("Discarding graph build result.", "build_id", res.Snapshot.BuildID(), "error", err)
		return Outcome{Err: err}
	}

	m.publish(res.Snapshot)
	metrics.BuildsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.BuildDuration.Observe(time.Since(start).Seconds())
	logger.Debug("Published snapshot.", "build_id", res.Snapshot.BuildID(), "duration", time.Since(start))
	return Outcome{Result: res}
}

func (m *Manager) publish(snap *graph.Snapshot) {
	m.current.Store(snap)

	metrics.Nodes.Set(float64(snap.NodeCount()))
	counts := snap.KindCounts()
	for _, k := range graph.Kinds {
		metrics.Edges.WithLabelValues(string(k)).Set(float64(counts[k]))
	}

	m.mu.Lock()
	subs := slices.Clone(m.subscribers)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
