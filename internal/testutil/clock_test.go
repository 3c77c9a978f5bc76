package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func TestStepClock_FirstCallReturnsStart(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)
	assert.Equal(t, int64(0), clock.Calls())
	assert.True(t, clock.Now().Equal(epoch))
	assert.Equal(t, int64(1), clock.Calls())
}

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(epoch, time.Minute)

	clock.Now()
	assert.True(t, clock.Now().Equal(epoch.Add(time.Minute)))
	assert.True(t, clock.Now().Equal(epoch.Add(2*time.Minute)))
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	clock.Now()
	clock.Now()
	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.True(t, clock.Now().Equal(epoch))
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(epoch, time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]time.Time, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]time.Time, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}

	wg.Wait()

	seen := make(map[int64]bool)
	for i := range results {
		for _, ts := range results[i] {
			key := ts.UnixNano()
			require.False(t, seen[key], "duplicate timestamp %s", ts)
			seen[key] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestSequenceIDs(t *testing.T) {
	ids := NewSequenceIDs("calc")
	assert.Equal(t, "calc-001", ids.Generate())
	assert.Equal(t, "calc-002", ids.Generate())

	assert.Equal(t, "test-001", NewSequenceIDs("").Generate())
}
