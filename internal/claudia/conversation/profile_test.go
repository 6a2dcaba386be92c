package conversation

import (
	"fmt"
	"testing"
	"time"
)

func TestProfileStoreFirstSeenIsFixed(t *testing.T) {
	store := NewProfileStore(ProfileConfig{})
	first := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)

	store.Record("@alice:example.org", "alice", "hello", first)
	store.Record("@alice:example.org", "alice", "again", first.Add(time.Hour))

	p, ok := store.Get("@alice:example.org")
	if !ok {
		t.Fatal("expected profile to exist")
	}
	if !p.FirstSeen.Equal(first) {
		t.Errorf("expected FirstSeen to stay %v, got %v", first, p.FirstSeen)
	}
	if !p.LastInteraction.Equal(first.Add(time.Hour)) {
		t.Errorf("expected LastInteraction to advance, got %v", p.LastInteraction)
	}
}

func TestProfileStoreBoundsMessageLog(t *testing.T) {
	store := NewProfileStore(ProfileConfig{MaxMessages: 3})
	base := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)

	for i := range 5 {
		store.Record("@alice:example.org", "alice", fmt.Sprintf("message %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	p, _ := store.Get("@alice:example.org")
	if p.TotalMessages != 5 {
		t.Errorf("expected TotalMessages to count every message, got %d", p.TotalMessages)
	}
	if len(p.MessageLog) != 3 {
		t.Fatalf("expected message log capped at 3, got %d", len(p.MessageLog))
	}
	if p.MessageLog[0].Content != "message 2" {
		t.Errorf("expected oldest surviving entry to be message 2, got %q", p.MessageLog[0].Content)
	}
}

func TestProfileStoreTracksLatestUsername(t *testing.T) {
	store := NewProfileStore(ProfileConfig{})
	now := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)

	store.Record("@alice:example.org", "alice", "hello", now)
	store.Record("@alice:example.org", "Alice Lidell", "renamed", now.Add(time.Minute))

	p, _ := store.Get("@alice:example.org")
	if p.Username != "Alice Lidell" {
		t.Errorf("expected most recent display name, got %q", p.Username)
	}
}

func TestProfileStoreGetMissing(t *testing.T) {
	store := NewProfileStore(ProfileConfig{})
	if _, ok := store.Get("@nobody:example.org"); ok {
		t.Error("expected missing profile to report false")
	}
}
