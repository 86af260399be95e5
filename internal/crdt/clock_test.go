package crdt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLamportClock_Tick(t *testing.T) {
	clock := NewLamportClock()
	assert.Equal(t, int64(0), clock.Now())

	prev := clock.Now()
	for range 10 {
		next := clock.Tick()
		assert.Greater(t, next, prev)
		prev = next
	}
	assert.Equal(t, int64(10), clock.Now())
}

func TestLamportClock_Observe(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		observed []int64
		wantNext int64
	}{
		{name: "remote ahead", observed: []int64{7}, wantNext: 8},
		{name: "remote behind", start: 5, observed: []int64{2}, wantNext: 6},
		{name: "equal", start: 3, observed: []int64{3}, wantNext: 4},
		{name: "batch out of order", observed: []int64{4, 9, 1}, wantNext: 10},
		{name: "nothing observed", start: 2, wantNext: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewLamportClock()
			for range tt.start {
				clock.Tick()
			}
			for _, ts := range tt.observed {
				clock.Observe(ts)
			}

			assert.Equal(t, tt.wantNext, clock.Tick())
		})
	}
}

func TestLamportClock_ConcurrentTick(t *testing.T) {
	clock := NewLamportClock()

	const workers, ticks = 10, 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*ticks)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ticks {
				ts := clock.Tick()
				mu.Lock()
				seen[ts] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*ticks, "every tick must be unique")
	assert.Equal(t, int64(workers*ticks), clock.Now())
}
