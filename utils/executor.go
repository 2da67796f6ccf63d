package utils

import (
	"errors"
	"time"
)

// ErrTimeout is reported when a model call exceeds the hard per-attempt
// deadline. It is the only error class the retry loop will retry.
var ErrTimeout = errors.New("call timed out")

// Executor runs at most one call at a time and bounds each wait by a hard
// wall-clock deadline. The single slot exists to impose the deadline on a
// call that has no native cancellation, not for parallelism: when a wait
// times out the caller detaches, but the underlying call keeps the slot
// until it actually returns, so a retry queues behind it exactly as the
// remote side may still be doing the work.
type Executor struct {
	slot    chan struct{}
	timeout time.Duration
}

// NewExecutor creates an Executor with the given per-attempt deadline.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{
		slot:    make(chan struct{}, 1),
		timeout: timeout,
	}
}

// Run submits fn to the single-concurrency slot and waits for it to finish,
// for at most the configured deadline measured from submission. On deadline
// expiry it returns ErrTimeout without waiting for fn; the result of a
// timed-out attempt is unknown and the remote work may still complete.
func (e *Executor) Run(fn func() error) error {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case e.slot <- struct{}{}:
	case <-timer.C:
		return ErrTimeout
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-e.slot }()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrTimeout
	}
}
