package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	l, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l == nil {
		t.Fatal("expected non-nil limiter")
	}
	if l.Rate() != 100 {
		t.Errorf("expected rate 100, got %d", l.Rate())
	}
}

func TestNew_RejectsNonPositiveRate(t *testing.T) {
	for _, rps := range []int{0, -1, -100} {
		if _, err := New(rps); err == nil {
			t.Errorf("expected error for rate %d", rps)
		}
	}
}

func TestLimiter_SubmitRunsOperation(t *testing.T) {
	l, err := New(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ran atomic.Bool
	ticket, err := l.Submit(context.Background(), func(ctx context.Context) {
		ran.Store(true)
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case <-ticket.Done():
	case <-time.After(time.Second):
		t.Fatal("ticket never resolved")
	}
	if !ran.Load() {
		t.Error("operation did not run")
	}
}

func TestLimiter_BurstAdmitsUpToRateImmediately(t *testing.T) {
	l, err := New(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 10; i++ {
		if _, err := l.Submit(ctx, func(ctx context.Context) {}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// Burst equals the rate, so the first 10 admissions should not wait.
	if elapsed > 100*time.Millisecond {
		t.Errorf("burst admissions took too long: %v", elapsed)
	}
}

func TestLimiter_ThrottlesBeyondBurst(t *testing.T) {
	l, err := New(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	start := time.Now()

	// 15 submissions at 10/s: first 10 instant, next 5 need ~500ms.
	for i := 0; i < 15; i++ {
		if _, err := l.Submit(ctx, func(ctx context.Context) {}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	elapsed := time.Since(start)
	if elapsed < 400*time.Millisecond {
		t.Errorf("rate limiting doesn't appear to be working, elapsed: %v", elapsed)
	}
}

func TestLimiter_FIFOAdmission(t *testing.T) {
	l, err := New(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := l.Submit(ctx, func(ctx context.Context) {}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	// Burst drained: the next submission blocks ~100ms for a token. A
	// submission arriving after it must not overtake it.
	var first time.Time
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := l.Submit(ctx, func(ctx context.Context) {}); err != nil {
			t.Errorf("submit failed: %v", err)
			return
		}
		first = time.Now()
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := l.Submit(ctx, func(ctx context.Context) {}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second := time.Now()
	<-done

	if first.IsZero() || !first.Before(second) {
		t.Errorf("later submission overtook an earlier one: first %v, second %v", first, second)
	}
}

func TestLimiter_SubmitContextCancelled(t *testing.T) {
	l, err := New(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exhaust the burst token first.
	if _, err := l.Submit(context.Background(), func(ctx context.Context) {}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Submit(ctx, func(ctx context.Context) {}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLimiter_OperationsRunConcurrently(t *testing.T) {
	l, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Admitted operations must not block each other: 5 operations sleeping
	// 100ms each should finish in well under 500ms.
	block := make(chan struct{})
	tickets := make([]*Ticket, 0, 5)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ticket, err := l.Submit(ctx, func(ctx context.Context) {
			<-block
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		tickets = append(tickets, ticket)
	}

	close(block)
	start := time.Now()
	for _, ticket := range tickets {
		if err := ticket.Wait(ctx); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("operations appear serialized, waited %v", elapsed)
	}
}

func TestTicket_WaitContextCancelled(t *testing.T) {
	l, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block := make(chan struct{})
	defer close(block)
	ticket, err := l.Submit(context.Background(), func(ctx context.Context) {
		<-block
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := ticket.Wait(ctx); err == nil {
		t.Error("expected context error while operation still running")
	}
}
