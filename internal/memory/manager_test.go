package memory

import (
	"testing"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/domain"
)

func TestGetOrCreateReturnsSameMemory(t *testing.T) {
	m := newManager(10, 5, fakeClock())

	a := m.GetOrCreate("ip-1")
	b := m.GetOrCreate("ip-1")
	if a != b {
		t.Fatalf("expected the same memory instance for one session id")
	}
}

func TestGetNeverAutoCreates(t *testing.T) {
	m := newManager(10, 5, fakeClock())

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("Get must not create sessions")
	}
	if got := m.Stats().ActiveSessions; got != 0 {
		t.Fatalf("expected 0 sessions, got %d", got)
	}
}

func TestCapacityEvictsLeastRecentlyAccessed(t *testing.T) {
	m := newManager(3, 5, fakeClock())

	m.GetOrCreate("a")
	m.GetOrCreate("b")
	m.GetOrCreate("c")

	// Touch "a" so "b" becomes the oldest.
	m.GetOrCreate("a").AddUserMessage("hola")

	m.GetOrCreate("d")

	if got := m.Stats().ActiveSessions; got != 3 {
		t.Fatalf("expected 3 sessions after eviction, got %d", got)
	}
	if _, ok := m.Get("b"); ok {
		t.Errorf("expected session b to be evicted")
	}
	for _, id := range []domain.SessionID{"a", "c", "d"} {
		if _, ok := m.Get(id); !ok {
			t.Errorf("expected session %s to survive", id)
		}
	}
}

func TestEvictionTieBreakIsLexicographic(t *testing.T) {
	frozen := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	m := newManager(2, 5, func() time.Time { return frozen })

	m.GetOrCreate("zz")
	m.GetOrCreate("aa")
	m.GetOrCreate("mm")

	if _, ok := m.Get("aa"); ok {
		t.Errorf("expected lexicographically smallest session to be evicted on a timestamp tie")
	}
	if _, ok := m.Get("zz"); !ok {
		t.Errorf("expected session zz to survive")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	m := newManager(10, 5, fakeClock())
	m.GetOrCreate("ip-1")

	if !m.Delete("ip-1") {
		t.Fatalf("expected Delete to report an existing entry")
	}
	if m.Delete("ip-1") {
		t.Fatalf("expected second Delete to report no entry")
	}
}

func TestStatsAggregatesMessages(t *testing.T) {
	m := newManager(10, 5, fakeClock())
	m.GetOrCreate("a").AddUserMessage("1")
	m.GetOrCreate("a").AddAIMessage("2")
	m.GetOrCreate("b").AddUserMessage("3")

	s := m.Stats()
	if s.ActiveSessions != 2 || s.MaxSessions != 10 || s.TotalMessages != 3 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
