// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"bytes"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Set("k", []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Errorf("value = %s", got)
	}

	if err := s.Clear("k"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("value survived Clear")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.now

	s.Set("k", []byte(`"v"`), time.Minute)
	if _, ok, _ := s.Get("k"); !ok {
		t.Fatal("value should be live before the TTL")
	}

	clock.advance(2 * time.Minute)
	if _, ok, _ := s.Get("k"); ok {
		t.Error("value should lapse after the TTL")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Set("persona-session", []byte(`{"session_id":"abc"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("persona-session")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"session_id":"abc"}`)) {
		t.Errorf("value = %s", got)
	}

	if err := s.Clear("persona-session"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get("persona-session"); ok {
		t.Error("value survived Clear")
	}
	// Clearing an absent key is not an error.
	if err := s.Clear("persona-session"); err != nil {
		t.Errorf("Clear(absent): %v", err)
	}
}

func TestFileStoreTTL(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s.now = clock.now

	s.Set("k", []byte(`"v"`), time.Minute)
	clock.advance(2 * time.Minute)
	if _, ok, _ := s.Get("k"); ok {
		t.Error("value should lapse after the TTL")
	}
	// The expired file is removed, so a later read stays absent.
	if _, ok, _ := s.Get("k"); ok {
		t.Error("expired value resurfaced")
	}
}

func TestFileStoreKeySanitization(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := s.Set("../escape/attempt", []byte(`1`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("../escape/attempt")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`1`)) {
		t.Errorf("value = %s", got)
	}
	// Distinct keys that sanitize differently stay distinct.
	s.Set("other", []byte(`2`), time.Hour)
	if got, _, _ := s.Get("other"); !bytes.Equal(got, []byte(`2`)) {
		t.Errorf("other = %s", got)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s1.Set("k", []byte(`{"n":1}`), time.Hour)

	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, ok, err := s2.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"n":1}`)) {
		t.Errorf("value = %s", got)
	}
}
