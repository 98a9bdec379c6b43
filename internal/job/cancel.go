package job

import "sync"

// CancelFlag is the cooperative cancellation signal shared by the scheduler
// and a running executor. Requesting cancellation never preempts work; the
// executor observes the flag at its checkpoints and inside progress
// callbacks.
type CancelFlag struct {
	once sync.Once
	ch   chan struct{}
}

// NewCancelFlag returns an unset flag.
func NewCancelFlag() *CancelFlag {
	return &CancelFlag{ch: make(chan struct{})}
}

// Request marks the flag. Safe to call multiple times from any goroutine.
func (f *CancelFlag) Request() {
	f.once.Do(func() {
		close(f.ch)
	})
}

// Requested reports whether cancellation has been asked for.
func (f *CancelFlag) Requested() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Done exposes the flag as a channel for select loops.
func (f *CancelFlag) Done() <-chan struct{} {
	return f.ch
}
