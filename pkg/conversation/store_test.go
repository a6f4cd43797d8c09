package conversation

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStore_BoundedWindow(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 15; i++ {
		s.Append("s1", fmt.Sprintf("msg-%d", i))
	}

	all := s.Recent("s1", 100)
	if len(all) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(all))
	}
	if all[0] != "msg-5" || all[9] != "msg-14" {
		t.Errorf("unexpected window: first=%q last=%q", all[0], all[9])
	}

	last3 := s.Recent("s1", 3)
	want := []string{"msg-12", "msg-13", "msg-14"}
	for i := range want {
		if last3[i] != want[i] {
			t.Errorf("Recent(3)[%d] = %q, want %q", i, last3[i], want[i])
		}
	}
}

func TestStore_RecentUnknownSession(t *testing.T) {
	s := NewStore(0)
	if got := s.Recent("missing", 3); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	s.Append("s1", "hello")
	if got := s.Recent("s1", 0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestStore_RecentReturnsCopy(t *testing.T) {
	s := NewStore(3)
	s.Append("s1", "a")
	got := s.Recent("s1", 1)
	got[0] = "mutated"
	if s.Recent("s1", 1)[0] != "a" {
		t.Error("Recent must return a copy")
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(5)
	s.Append("a", "from a")
	s.Append("b", "from b")

	if got := s.Recent("a", 5); len(got) != 1 || got[0] != "from a" {
		t.Errorf("session a leaked: %v", got)
	}
	if !s.End("a") {
		t.Fatal("expected End to report existing session")
	}
	if s.End("a") {
		t.Error("second End should report false")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
}

func TestStore_SweepIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(5)
	s.SetClock(func() time.Time { return now })

	s.Append("old", "x")
	now = now.Add(20 * time.Minute)
	s.Append("fresh", "y")
	now = now.Add(15 * time.Minute)

	if n := s.SweepIdle(30 * time.Minute); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if s.Recent("old", 1) != nil {
		t.Error("idle session should be gone")
	}
	if s.Recent("fresh", 1) == nil {
		t.Error("active session should survive")
	}

	stats := s.Stats()
	if stats["total_evicted"].(uint64) != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(10)
	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", g%4)
			for i := 0; i < 50; i++ {
				s.Append(id, "m")
				_ = s.Recent(id, 3)
			}
		}(g)
	}
	wg.Wait()

	if s.Len() != 4 {
		t.Errorf("expected 4 sessions, got %d", s.Len())
	}
	for i := 0; i < 4; i++ {
		if got := len(s.Recent(fmt.Sprintf("s%d", i), 100)); got != 10 {
			t.Errorf("session s%d holds %d messages, want 10", i, got)
		}
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore(2)
	s.Append("a", "1")
	s.Append("b", "2")
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}
