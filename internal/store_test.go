package internal

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestStorePutGet(t *testing.T) {
	s := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	defer s.Close()

	if err := s.Put("runs", "a", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := s.Get("runs", "a")
	if err != nil || string(v) != "one" {
		t.Fatalf("get: %q, %v", v, err)
	}
	if _, err := s.Get("runs", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get("nobucket", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing bucket, got %v", err)
	}
}

func TestStoreAppendList(t *testing.T) {
	s := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	defer s.Close()

	for _, v := range []string{"first", "second", "third"} {
		if err := s.Append("events", []byte(v)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.List("events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || string(got[0]) != "first" || string(got[2]) != "third" {
		t.Fatalf("list order: %q", got)
	}
}

func TestStoreMemoryFallback(t *testing.T) {
	// An unopenable path degrades to the in-memory store.
	s := OpenStore(filepath.Join(t.TempDir(), "no", "such", "dir", "test.db"))
	defer s.Close()

	if err := s.Put("runs", "a", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := s.Get("runs", "a")
	if err != nil || string(v) != "one" {
		t.Fatalf("get: %q, %v", v, err)
	}
	if err := s.Append("events", []byte("e1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := s.List("events")
	if len(got) != 1 {
		t.Fatalf("list: %q", got)
	}
	vals, _ := s.Values("runs")
	if len(vals) != 1 || string(vals[0]) != "one" {
		t.Fatalf("values: %q", vals)
	}
}
