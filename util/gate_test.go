package util

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGateLimit(t *testing.T) {
	const limit = 3
	g := NewGate(limit)
	var inside, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Enter()
			n := atomic.AddInt32(&inside, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&inside, -1)
			g.Leave()
		}()
	}
	wg.Wait()
	if peak > limit {
		t.Errorf("Got %d goroutines inside, expected at most %d", peak, limit)
	}
}
