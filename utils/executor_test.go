package utils

import (
	"errors"
	"testing"
	"time"
)

func TestExecutorPassesThroughResult(t *testing.T) {
	e := NewExecutor(time.Second)

	if err := e.Run(func() error { return nil }); err != nil {
		t.Errorf("successful call: got %v, want nil", err)
	}

	boom := errors.New("boom")
	if err := e.Run(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("failing call: got %v, want %v", err, boom)
	}
}

func TestExecutorEnforcesDeadline(t *testing.T) {
	e := NewExecutor(50 * time.Millisecond)

	start := time.Now()
	err := e.Run(func() error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if elapsed >= 200*time.Millisecond {
		t.Errorf("Run returned after %v; should detach at the 50ms deadline", elapsed)
	}
}

func TestExecutorSingleSlot(t *testing.T) {
	e := NewExecutor(50 * time.Millisecond)

	// First call times out but keeps the slot until it finishes.
	_ = e.Run(func() error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	// A fast second call queued behind the stale one must also hit the
	// deadline: it never gets the slot in time.
	err := e.Run(func() error { return nil })
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("queued call: got %v, want ErrTimeout", err)
	}
}

func TestRetryTimeoutExhaustion(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond, Logger: NewLogger()}

	attempts := 0
	start := time.Now()
	err := r.Do("always-timeout", func() error {
		attempts++
		return ErrTimeout
	})
	elapsed := time.Since(start)

	if attempts != 3 {
		t.Errorf("attempts = %d; want 3", attempts)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("got %v, want wrapped ErrTimeout", err)
	}
	// Backoff sleeps 20ms then 40ms; no sleep after the final attempt.
	if min := 60 * time.Millisecond; elapsed < min {
		t.Errorf("backoff took %v; want at least %v", elapsed, min)
	}
}

func TestRetryAbortsOnPermanentError(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	boom := errors.New("quota exceeded")
	attempts := 0
	err := r.Do("permanent", func() error {
		attempts++
		return boom
	})

	if attempts != 1 {
		t.Errorf("attempts = %d; want 1 (non-timeout errors are not retried)", attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped %v", err, boom)
	}
}

func TestRetryRecoversAfterTimeout(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	attempts := 0
	err := r.Do("flaky", func() error {
		attempts++
		if attempts == 1 {
			return ErrTimeout
		}
		return nil
	})

	if err != nil {
		t.Errorf("got %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d; want 2", attempts)
	}
}
