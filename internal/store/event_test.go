package store

import (
	"testing"
	"time"
)

func TestEventRepository_AppendAndRecent(t *testing.T) {
	s := newTestStore(t)

	events := []*Event{
		{SessionID: "s1", Backend: "contour_classifier", Gesture: "fist", Action: "jump", Confidence: 0.8},
		{SessionID: "s1", Backend: "contour_classifier", Gesture: "index_point", Action: "crouch", Confidence: 0.7},
		{SessionID: "s2", Backend: "keyboard_simulated", Gesture: "open_palm", Action: "idle", Confidence: 1.0},
	}
	for _, e := range events {
		if err := s.Events().Append(e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if e.ID == 0 {
			t.Error("append should assign an id")
		}
	}

	recent, err := s.Events().Recent(2)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d events, want 2", len(recent))
	}
	// Newest first
	if recent[0].Action != "idle" || recent[1].Action != "crouch" {
		t.Errorf("wrong order: %s, %s", recent[0].Action, recent[1].Action)
	}
}

func TestEventRepository_BySession(t *testing.T) {
	s := newTestStore(t)

	for _, e := range []*Event{
		{SessionID: "s1", Backend: "contour_classifier", Gesture: "fist", Action: "jump", Confidence: 0.9},
		{SessionID: "s2", Backend: "contour_classifier", Gesture: "fist", Action: "jump", Confidence: 0.9},
		{SessionID: "s1", Backend: "contour_classifier", Gesture: "open_palm", Action: "idle", Confidence: 0.8},
	} {
		if err := s.Events().Append(e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := s.Events().BySession("s1")
	if err != nil {
		t.Fatalf("by session failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Oldest first within a session
	if got[0].Action != "jump" || got[1].Action != "idle" {
		t.Errorf("wrong order: %s, %s", got[0].Action, got[1].Action)
	}
}

func TestEventRepository_Prune(t *testing.T) {
	s := newTestStore(t)

	e := &Event{SessionID: "s1", Backend: "contour_classifier", Gesture: "fist", Action: "jump", Confidence: 0.9}
	if err := s.Events().Append(e); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Nothing is older than an hour ago
	n, err := s.Events().Prune(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d events, want 0", n)
	}

	// Everything is older than an hour from now
	n, err = s.Events().Prune(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d events, want 1", n)
	}

	recent, err := s.Events().Recent(10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("expected empty history after prune, got %d", len(recent))
	}
}
