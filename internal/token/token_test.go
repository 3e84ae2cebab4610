package token

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSlotGetSetTake(t *testing.T) {
	s := NewSlot()
	if _, ok := s.Get(); ok {
		t.Fatalf("empty slot reported a token")
	}

	s.Set("tok123")
	if got, ok := s.Get(); !ok || got != "tok123" {
		t.Fatalf("get: got=%q ok=%v", got, ok)
	}
	// Get не очищает
	if _, ok := s.Get(); !ok {
		t.Fatalf("get cleared the slot")
	}

	got, ok := s.Take()
	if !ok || got != "tok123" {
		t.Fatalf("take: got=%q ok=%v", got, ok)
	}
	if _, ok := s.Take(); ok {
		t.Fatalf("second take returned a token")
	}
}

func TestSlotLastWriterWins(t *testing.T) {
	s := NewSlot("a")
	s.Set("b")
	s.Set("c")
	if got, _ := s.Get(); got != "c" {
		t.Fatalf("got=%q want=c", got)
	}
	s.Set("")
	if _, ok := s.Get(); ok {
		t.Fatalf("empty set did not clear the slot")
	}
}

func TestSlotConcurrentTakeHandsOutOnce(t *testing.T) {
	s := NewSlot("only-once")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Take(); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("token taken %d times, want 1", wins.Load())
	}
}

func TestRedacted(t *testing.T) {
	if got := Token("c07924d3f556a355").Redacted(); got != "c07924…" {
		t.Fatalf("redacted=%q", got)
	}
	if got := Token("abc").Redacted(); got != "…" {
		t.Fatalf("short redacted=%q", got)
	}
}
