// Package feed streams graph snapshots and layout frames to an external
// presentation server over Socket.IO.
package feed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/export"
	"github.com/vk/recipemap/internal/layout"
	"github.com/vk/recipemap/internal/ruleid"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by the publisher.
const (
	EventSnapshot = "graph:snapshot"
	EventFrame    = "graph:frame"
)

// ErrNotConnected is returned when publishing on a closed or disconnected feed.
var ErrNotConnected = errors.New("feed is not connected")

// Config describes the presentation server.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Frame is one layout update.
type Frame struct {
	BuildID   string         `json:"buildId"`
	Step      int            `json:"step"`
	Energy    float64        `json:"energy"`
	Bounds    layout.Bounds  `json:"bounds"`
	Positions []NodePosition `json:"positions"`
}

// NodePosition is the coordinate of one rule in a frame.
type NodePosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// NewFrame captures the current state of sim.
func NewFrame(sim *layout.Simulator, energy float64) Frame {
	f := Frame{Step: sim.Steps(), Energy: energy, Bounds: sim.Bounds()}
	if snap := sim.Snapshot(); snap != nil {
		f.BuildID = snap.BuildID()
	}
	positions := sim.Positions()
	ids := make([]ruleid.ID, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, ruleid.Compare)
	for _, id := range ids {
		p := positions[id]
		f.Positions = append(f.Positions, NodePosition{ID: id.String(), X: p.X, Y: p.Y})
	}
	return f
}

// Publisher emits events on a connected socket.
type Publisher struct {
	send      func(event string, payload any)
	close     func()
	closeOnce sync.Once
	connected atomic.Bool
	sent      atomic.Int64
}

// Dial connects to the presentation server and waits until the connection is
// established, the connect timeout elapses or ctx is done.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("feed_url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("feed URL %q must be absolute", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}
	if !strings.HasPrefix(namespace, "/") {
		namespace = "/" + namespace
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	p := newPublisher(
		func(event string, payload any) { io.Emit(event, payload) },
		func() { io.Disconnect() },
	)

	ready := make(chan error, 1)
	signal := func(err error) {
		select {
		case ready <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		p.connected.Store(true)
		logger.Info("Feed connected", "sid", io.Id())
		signal(nil)
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		p.connected.Store(false)
		logger.Info("Feed disconnected", "reason", reason)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		signal(err)
	})

	io.Connect()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case err := <-ready:
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to connect to feed: %w", err)
		}
		return p, nil
	case <-dialCtx.Done():
		p.Close()
		return nil, fmt.Errorf("timed out while waiting for feed connection: %w", dialCtx.Err())
	}
}

func newPublisher(send func(string, any), closeFn func()) *Publisher {
	return &Publisher{send: send, close: closeFn}
}

// Connected reports whether the socket is currently connected.
func (p *Publisher) Connected() bool { return p.connected.Load() }

// Sent returns the number of events emitted so far.
func (p *Publisher) Sent() int64 { return p.sent.Load() }

// PublishSnapshot emits the export document of a freshly built snapshot.
func (p *Publisher) PublishSnapshot(ctx context.Context, doc export.Document) error {
	return p.emit(ctx, EventSnapshot, doc)
}

// PublishFrame emits one layout frame.
func (p *Publisher) PublishFrame(ctx context.Context, f Frame) error {
	return p.emit(ctx, EventFrame, f)
}

func (p *Publisher) emit(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.connected.Load() {
		return ErrNotConnected
	}
	p.send(event, payload)
	p.sent.Add(1)
	ctxlog.FromContext(ctx).Debug("Feed event emitted.", "event", event)
	return nil
}

// Close disconnects the socket. It is safe to call more than once.
func (p *Publisher) Close() {
	p.connected.Store(false)
	p.closeOnce.Do(func() {
		if p.close != nil {
			p.close()
		}
	})
}
