package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForEach_VisitsEveryIndex(t *testing.T) {
	seen := make([]int32, 37)

	err := ForEach(len(seen), 4, func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	require.NoError(t, err)

	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}

func TestForEach_BoundsConcurrency(t *testing.T) {
	var active, peak int32

	err := ForEach(32, 4, func(_ int) error {
		cur := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, peak, int32(4))
	assert.GreaterOrEqual(t, peak, int32(1))
}

func TestForEach_ReturnsErrorAfterJoin(t *testing.T) {
	boom := errors.New("boom")
	var done int32

	err := ForEach(10, 4, func(i int) error {
		defer atomic.AddInt32(&done, 1)
		if i == 3 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(10), atomic.LoadInt32(&done), "all units must finish before ForEach returns")
}

func TestForEach_RecoversPanic(t *testing.T) {
	var done int32

	err := ForEach(8, 4, func(i int) error {
		defer atomic.AddInt32(&done, 1)
		if i == 5 {
			panic("bad unit")
		}
		return nil
	})

	require.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "bad unit")
	assert.Equal(t, int32(8), atomic.LoadInt32(&done))
}

func TestForEach_Empty(t *testing.T) {
	called := false
	err := ForEach(0, 4, func(_ int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}

func BenchmarkForEach(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var sum int64
		_ = ForEach(64, 4, func(i int) error {
			atomic.AddInt64(&sum, int64(i))
			return nil
		})
	}
}
