package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestIDSetNoDuplicates(t *testing.T) {
	s := NewIDSet()

	if !s.Add("sku-1001") {
		t.Error("first Add should return true")
	}
	if s.Add("sku-1001") {
		t.Error("second Add of same ID should return false")
	}
	if !s.Contains("sku-1001") {
		t.Error("Contains should report the added ID")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestIDSetConcurrency(t *testing.T) {
	s := NewIDSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("sku-same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

// With the rate limit off the pool must not serialize jobs.
func TestWorkerPoolNoRateLimit(t *testing.T) {
	pool := NewWorkerPool(4, 0)

	start := time.Now()
	for i := 0; i < 8; i++ {
		pool.Submit(func() {
			time.Sleep(10 * time.Millisecond)
		})
	}
	pool.Wait()

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("8 jobs on 4 workers took %v; pacing should be disabled", elapsed)
	}
}
