package builder

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/recipemap/internal/catalogue"
	"github.com/vk/recipemap/internal/graph"
)

func TestSummary(t *testing.T) {
	res := build(t,
		catalogue.Simple("r1", "x"),
		catalogue.Simple("r2", "y", "x"),
		catalogue.Simple("r3", "z", "y"),
	)

	sum := res.Summary
	assert.Equal(t, res.Snapshot.BuildID(), sum.BuildID)
	assert.Equal(t, 3, sum.Nodes)
	assert.Equal(t, 3, sum.Edges)
	assert.Equal(t, 2, sum.Kinds[graph.KindDirectConsumption])
	assert.False(t, sum.HasCycles)

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("built", "summary", sum)
	out := buf.String()
	assert.Contains(t, out, "summary.nodes=3")
	assert.Contains(t, out, "summary.INDIRECT_CHAIN=1")
	assert.Contains(t, out, "summary.SHARED_INPUT=0")
}
