package timer

import (
	"sync"
	"time"
)

// Ticker drives a callback at a fixed interval. At most one callback loop is
// outstanding: Arm always cancels the previous loop first.
type Ticker struct {
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewTicker creates an idle ticker.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

// Arm starts calling fn once per interval until Cancel or the next Arm.
func (ticker *Ticker) Arm(fn func(time.Time)) {
	ticker.mu.Lock()
	defer ticker.mu.Unlock()

	ticker.cancelLocked()
	stopCh := make(chan struct{})
	ticker.stopCh = stopCh

	ticker.wg.Add(1)
	go ticker.run(stopCh, fn)
}

// Cancel stops the outstanding loop, if any. It does not wait for the loop to
// exit, so it is safe to call from within the callback.
func (ticker *Ticker) Cancel() {
	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	ticker.cancelLocked()
}

// Armed reports whether a loop is outstanding.
func (ticker *Ticker) Armed() bool {
	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	return ticker.stopCh != nil
}

// Wait blocks until every cancelled loop has exited.
func (ticker *Ticker) Wait() {
	ticker.wg.Wait()
}

func (ticker *Ticker) cancelLocked() {
	if ticker.stopCh != nil {
		close(ticker.stopCh)
		ticker.stopCh = nil
	}
}

func (ticker *Ticker) run(stopCh <-chan struct{}, fn func(time.Time)) {
	defer ticker.wg.Done()

	clock := time.NewTicker(ticker.interval)
	defer clock.Stop()

	for {
		select {
		case <-stopCh:
			return
		case tickTime := <-clock.C:
			select {
			case <-stopCh:
				return
			default:
			}
			fn(tickTime)
		}
	}
}
