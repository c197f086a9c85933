package builder

import (
	"log/slog"

	"github.com/vk/recipemap/internal/graph"
)

// Summary describes a finished snapshot.
type Summary struct {
	BuildID   string
	Nodes     int
	Edges     int
	Kinds     map[graph.Kind]int
	HasCycles bool
}

// Summarize computes the summary of snap.
func Summarize(snap *graph.Snapshot) Summary {
	return Summary{
		BuildID:   snap.BuildID(),
		Nodes:     snap.NodeCount(),
		Edges:     snap.EdgeCount(),
		Kinds:     snap.KindCounts(),
		HasCycles: snap.HasCycles(),
	}
}

// LogValue renders the summary as a log group.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("build_id", s.BuildID),
		slog.Int("nodes", s.Nodes),
		slog.Int("edges", s.Edges),
		slog.Bool("has_cycles", s.HasCycles),
	}
	for _, k := range graph.Kinds {
		attrs = append(attrs, slog.Int(string(k), s.Kinds[k]))
	}
	return slog.GroupValue(attrs...)
}
