package slot

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id    int
	kills atomic.Int32
}

func (f *fakeHandle) Terminate() {
	f.kills.Add(1)
}

func TestSlot_ReplaceReturnsPrevious(t *testing.T) {
	s := New[*fakeHandle]()
	a, b := &fakeHandle{id: 1}, &fakeHandle{id: 2}

	old, err := s.Replace(a)
	require.NoError(t, err)
	assert.Nil(t, old)

	old, err = s.Replace(b)
	require.NoError(t, err)
	assert.Same(t, a, old)
	assert.True(t, s.Occupied())
}

func TestSlot_Take(t *testing.T) {
	s := New[*fakeHandle]()
	a := &fakeHandle{id: 1}
	_, _ = s.Replace(a)

	old, err := s.Take()
	require.NoError(t, err)
	assert.Same(t, a, old)
	assert.False(t, s.Occupied())

	old, err = s.Take()
	require.NoError(t, err)
	assert.Nil(t, old, "taking an empty slot returns nothing")
}

func TestSlot_TakeIf(t *testing.T) {
	s := New[*fakeHandle]()
	a, b := &fakeHandle{id: 1}, &fakeHandle{id: 2}
	_, _ = s.Replace(a)

	ok, err := s.TakeIf(b)
	require.NoError(t, err)
	assert.False(t, ok, "should not take a different occupant")
	assert.True(t, s.Occupied())

	ok, err = s.TakeIf(a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.Occupied())

	ok, err = s.TakeIf(nil)
	require.NoError(t, err)
	assert.False(t, ok, "nil never matches")
}

func TestSlot_EvictTerminatesOnce(t *testing.T) {
	s := New[*fakeHandle]()
	a := &fakeHandle{id: 1}
	_, _ = s.Replace(a)

	evicted, err := s.Evict()
	require.NoError(t, err)
	assert.True(t, evicted)

	evicted, err = s.Evict()
	require.NoError(t, err)
	assert.False(t, evicted)

	assert.Equal(t, int32(1), a.kills.Load())
}

func TestSlot_Close(t *testing.T) {
	s := New[*fakeHandle]()
	a := &fakeHandle{id: 1}
	_, _ = s.Replace(a)

	s.Close()
	s.Close()
	assert.Equal(t, int32(1), a.kills.Load())

	_, err := s.Replace(&fakeHandle{id: 2})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Take()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.TakeIf(a)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Evict()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSlot_ConcurrentSwapsTerminateEachHandleOnce(t *testing.T) {
	s := New[*fakeHandle]()

	const workers = 16
	const perWorker = 200

	handles := make([]*fakeHandle, workers*perWorker)
	for i := range handles {
		handles[i] = &fakeHandle{id: i}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := handles[w*perWorker+i]
				switch i % 3 {
				case 0, 1:
					old, err := s.Replace(h)
					if err == nil && old != nil {
						old.Terminate()
					}
				case 2:
					_, _ = s.Evict()
					// h was never installed; terminate it as an unused spawn would be
					h.Terminate()
				}
			}
		}(w)
	}
	wg.Wait()
	_, _ = s.Evict()

	for _, h := range handles {
		assert.Equal(t, int32(1), h.kills.Load(), "handle %d", h.id)
	}
}
