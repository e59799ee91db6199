package report

import (
	"bytes"
	"testing"

	"github.com/poiesic/rgsearch/stream"
	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 100)

	p.Start(1)
	p.Batch(1, 50)
	assert.Empty(t, buf.String(), "below interval")

	p.Batch(1, 60)
	assert.Contains(t, buf.String(), "search 1: 110 lines")
	assert.Equal(t, 110, p.Lines())
}

func TestProgressTracker_IgnoresStaleSession(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 1)

	p.Start(1)
	p.Start(2)
	p.Batch(1, 500)
	p.Finish(1, stream.Result{Lines: 500})

	assert.Empty(t, buf.String())
	assert.Equal(t, 0, p.Lines())
}

func TestProgressTracker_CappedAndFinish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 1000)

	p.Start(3)
	p.Batch(3, 10)
	p.Capped(3, 10)
	assert.Contains(t, buf.String(), "limit of 10 reached")

	p.Finish(3, stream.Result{Lines: 10, Capped: true})
	out := buf.String()
	assert.Contains(t, out, "search 3: 10 lines")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}
