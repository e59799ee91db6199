package history

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a time source that advances one second per call.
func stepClock() func() time.Time {
	t := time.Now().Add(-time.Hour)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	svc, err := New(repo, append([]Option{WithClock(stepClock())}, opts...)...)
	require.NoError(t, err)
	return svc
}

func queries(entries []*core.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryRepository()
		require.NoError(t, err)
		defer backend.Close()

		_, err = New(repo, WithLimit(0))
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("default limit", func(t *testing.T) {
		svc := newTestService(t)
		assert.Equal(t, DefaultLimit, svc.Limit())
	})
}

func TestAdd_NewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, q := range []string{"alpha", "beta", "gamma"} {
		_, err := svc.Add(ctx, q, "/src", core.SearchOptions{})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, queries(entries))
}

func TestAdd_MovesDuplicateToFront(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alpha", "/src", core.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "beta", "/src", core.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "alpha", "/src", core.SearchOptions{Regex: true})
	require.NoError(t, err)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, queries(entries))
	assert.True(t, entries[0].Options.Regex, "latest options replace the old ones")
}

func TestAdd_SameQueryDifferentPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alpha", "/a", core.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "alpha", "/b", core.SearchOptions{})
	require.NoError(t, err)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAdd_CommaInQueryAndPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "x,y", "src", core.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "y", "src,x", core.SearchOptions{})
	require.NoError(t, err)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2, "searches differing only in where the comma falls are distinct")
	assert.Equal(t, "y", entries[0].Query)
	assert.Equal(t, "src,x", entries[0].Path)
	assert.Equal(t, "x,y", entries[1].Query)
	assert.Equal(t, "src", entries[1].Path)
}

func TestAdd_TrimsToLimit(t *testing.T) {
	svc := newTestService(t, WithLimit(3))
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c", "d", "e"} {
		_, err := svc.Add(ctx, q, ".", core.SearchOptions{})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c"}, queries(entries))

	count, err := svc.repo.CountHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "entries beyond the limit are deleted, not hidden")
}

func TestAdd_RejectsEmptyQuery(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(context.Background(), "", ".", core.SearchOptions{})
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestAdd_CopiesGlobs(t *testing.T) {
	svc := newTestService(t)
	globs := []string{"*.go"}

	entry, err := svc.Add(context.Background(), "alpha", ".", core.SearchOptions{Globs: globs})
	require.NoError(t, err)

	globs[0] = "*.rs"
	assert.Equal(t, []string{"*.go"}, entry.Options.Globs)
}

func TestClear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alpha", ".", core.SearchOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
