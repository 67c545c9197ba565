package tick

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/alive/v2"
)

func TestCounter(t *testing.T) {
	t.Parallel()

	var c Counter
	assert.False(t, c.TryDecrement())
	assert.Equal(t, time.Duration(0), c.SinceLast())
	c.Inc()
	c.Inc()
	assert.Equal(t, uint32(2), c.Pending())
	assert.True(t, c.SinceLast() < time.Second)
	assert.True(t, c.TryDecrement())
	assert.True(t, c.TryDecrement())
	assert.False(t, c.TryDecrement())

	c.Inc()
	c.Reset()
	assert.Equal(t, uint32(0), c.Pending())
}

func TestCounterConcurrent(t *testing.T) {
	t.Parallel()

	const producers = 4
	const perProducer = 1000
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				c.Inc()
			}
		}()
	}

	taken := 0
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		for c.TryDecrement() {
			taken++
		}
	}
	for c.TryDecrement() {
		taken++
	}
	assert.Equal(t, producers*perProducer, taken)
}

func TestSource(t *testing.T) {
	t.Parallel()

	a := alive.NewAlive()
	c := &Counter{}
	s := &Source{Period: time.Millisecond, Counter: c}
	go s.Run(a)
	require.Eventually(t, func() bool { return c.Pending() >= 3 }, time.Second, time.Millisecond)
	a.Stop()
	a.Wait()
	n := c.Pending()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, n, c.Pending(), "source must not fire after stop")
}
