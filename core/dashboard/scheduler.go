package dashboard

import (
	"sync"
	"time"
)

// DefaultTickDelay is how long the default scheduler collects changes before
// listeners are notified.
const DefaultTickDelay = 10 * time.Millisecond

// Scheduler decides when batched model change notifications run.
type Scheduler interface {
	Schedule(fn func())
}

// TickScheduler runs scheduled functions on a timer goroutine once Delay has
// passed. Together with the model's pending flag, all changes made in the
// meantime end up in a single notification.
type TickScheduler struct {
	Delay time.Duration

	wg sync.WaitGroup
}

// NewTickScheduler creates a scheduler waiting delay before each run.
func NewTickScheduler(delay time.Duration) *TickScheduler {
	return &TickScheduler{Delay: delay}
}

func (s *TickScheduler) Schedule(fn func()) {
	s.wg.Add(1)
	time.AfterFunc(s.Delay, func() {
		defer s.wg.Done()
		fn()
	})
}

// Wait blocks until all scheduled functions returned.
func (s *TickScheduler) Wait() {
	s.wg.Wait()
}

// ImmediateScheduler runs scheduled functions inline, so every change is
// reported on its own. Mostly useful in tests.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(fn func()) {
	fn()
}

// AsyncScheduler runs every scheduled function in its own goroutine.
type AsyncScheduler struct {
	wg sync.WaitGroup
}

func (s *AsyncScheduler) Schedule(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Wait blocks until all scheduled functions returned.
func (s *AsyncScheduler) Wait() {
	s.wg.Wait()
}

// ManualScheduler queues functions until Flush is called.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

// Flush runs queued functions in order. Functions scheduled while flushing
// wait for the next flush.
func (s *ManualScheduler) Flush() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// Pending returns the number of queued functions.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
