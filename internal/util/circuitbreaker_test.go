package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, time.Minute, nil, zap.NewNop())

	if !cb.CanExecute() {
		t.Fatal("new breaker should be closed")
	}

	cb.RecordFailure(0)
	cb.RecordFailure(0)
	if !cb.CanExecute() {
		t.Fatal("breaker opened before the threshold")
	}

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatal("breaker should open at the failure threshold")
	}

	status := cb.GetStatus()
	if status.State != CircuitStateOpen || status.FailureCount != 3 {
		t.Errorf("status = %+v", status)
	}
	if status.NextRetryTime == nil {
		t.Error("open breaker should expose its retry time")
	}
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, time.Minute, nil, zap.NewNop())

	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordSuccess()
	cb.RecordFailure(0)
	cb.RecordFailure(0)

	if !cb.CanExecute() {
		t.Error("success should reset the failure count")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, time.Minute, nil, zap.NewNop())

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.CanExecute() {
		t.Fatal("breaker should half-open after the reset timeout")
	}

	cb.RecordSuccess()
	if cb.GetState() != CircuitStateClosed {
		t.Errorf("state = %s, want CLOSED after recovery", cb.GetState())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(5, 10*time.Millisecond, time.Minute, nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		cb.RecordFailure(0)
	}
	time.Sleep(20 * time.Millisecond)
	if cb.GetState() != CircuitStateHalfOpen {
		t.Fatalf("state = %s, want HALF_OPEN", cb.GetState())
	}

	// A single failure in half-open snaps back to open regardless of count.
	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Error("half-open failure should reopen the breaker")
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute, time.Minute, nil, zap.NewNop())

	cb.RecordFailure(0)
	cb.Reset()

	if !cb.CanExecute() {
		t.Error("reset should close the breaker")
	}
	if status := cb.GetStatus(); status.FailureCount != 0 {
		t.Errorf("failure count = %d after reset", status.FailureCount)
	}
}
