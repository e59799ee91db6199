package report

import (
	"testing"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchFor(path string) string {
	return `{"type":"match","data":{"path":{"text":"` + path + `"},"lines":{"text":"x\n"},"line_number":1,"submatches":[]}}`
}

func TestSummary_CountsMatchesAndFiles(t *testing.T) {
	s := NewSummary(0)

	require.NoError(t, s.Emit(core.DataEvent(1, []string{
		`{"type":"begin","data":{"path":{"text":"a.go"}}}`,
		matchFor("a.go"),
		matchFor("a.go"),
		`{"type":"end","data":{"path":{"text":"a.go"}}}`,
	})))
	require.NoError(t, s.Emit(core.DataEvent(1, []string{
		matchFor("b.go"),
		"not json",
	})))

	snap := s.Snapshot()
	assert.Equal(t, 6, snap.Lines)
	assert.Equal(t, 3, snap.Matches)
	assert.Equal(t, 2, snap.Files)
	assert.Equal(t, 2, snap.Other)
	assert.Equal(t, 1, snap.Invalid)
	assert.False(t, snap.Finished)
	assert.False(t, snap.Capped)

	require.NoError(t, s.Emit(core.FinishedEvent(1)))
	assert.True(t, s.Snapshot().Finished)
}

func TestSummary_IgnoresOtherSessions(t *testing.T) {
	s := NewSummary(2)

	require.NoError(t, s.Emit(core.DataEvent(1, []string{matchFor("old.go")})))
	require.NoError(t, s.Emit(core.FinishedEvent(1)))
	require.NoError(t, s.Emit(core.DataEvent(2, []string{matchFor("new.go")})))

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Matches)
	assert.False(t, snap.Finished, "finished event of a superseded session must not count")
}

func TestSummary_CappedComesFromResult(t *testing.T) {
	lines := []string{matchFor("a"), matchFor("b"), matchFor("c")}

	t.Run("natural end at the cap", func(t *testing.T) {
		s := NewSummary(1)
		require.NoError(t, s.Emit(core.DataEvent(1, lines)))
		require.NoError(t, s.Emit(core.FinishedEvent(1)))
		s.Complete(stream.Result{Lines: len(lines)})

		assert.False(t, s.Snapshot().Capped)
	})

	t.Run("stopped by the cap", func(t *testing.T) {
		s := NewSummary(1)
		require.NoError(t, s.Emit(core.DataEvent(1, lines)))
		require.NoError(t, s.Emit(core.FinishedEvent(1)))
		s.Complete(stream.Result{Lines: len(lines), Capped: true})

		assert.True(t, s.Snapshot().Capped)
	})
}
