package session

import (
	"sync"
	"time"
)

// Countdown is a per-question timer. It is created once per question index,
// seeded from that question's time limit, ticks down once per second, and
// fires its expiry callback exactly once. Stopping it guarantees no further
// ticks and no expiry firing.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	stopCh    chan struct{}
}

// newCountdown starts a countdown of the given number of seconds, ticking at
// the given interval. onExpire runs on the countdown's own goroutine when the
// timer reaches zero. The manager passes its tick so tests can compress it.
func newCountdown(seconds int, tick time.Duration, onExpire func()) *Countdown {
	c := &Countdown{
		remaining: seconds,
		stopCh:    make(chan struct{}),
	}
	go c.run(tick, onExpire)
	return c
}

func (c *Countdown) run(tick time.Duration, onExpire func()) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining--
			if c.remaining > 0 {
				c.mu.Unlock()
				continue
			}
			// Mark stopped before firing so a concurrent Stop cannot
			// race a second expiry.
			c.stopped = true
			c.mu.Unlock()
			onExpire()
			return
		}
	}
}

// Stop cancels the countdown. Safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stopCh)
}

// Remaining reports the seconds left, never below zero.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}
