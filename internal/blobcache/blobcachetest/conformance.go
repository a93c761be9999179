// ABOUTME: Shared behavior checks run against every Store backend
// ABOUTME: Each backend's tests call Run with a constructor for a fresh store
package blobcachetest

import (
	"errors"
	"sort"
	"testing"

	"github.com/harper/cachemigrate/internal/blobcache"
)

// Run exercises the Store contract against stores built by newStore
func Run(t *testing.T, newStore func(t *testing.T) blobcache.Store) {
	t.Helper()

	t.Run("InsertGet", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert("Artwork:1", []byte{0xde, 0xad}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		got, err := s.Get("Artwork:1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "\xde\xad" {
			t.Errorf("Get() = %x, want dead", got)
		}
	})

	t.Run("InsertOverwrites", func(t *testing.T) {
		s := newStore(t)
		_ = s.Insert("k", []byte("old"))
		if err := s.Insert("k", []byte("new")); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		got, _ := s.Get("k")
		if string(got) != "new" {
			t.Errorf("Get() = %q, want new", got)
		}
		keys, _ := s.GetAllKeys()
		if len(keys) != 1 {
			t.Errorf("GetAllKeys() = %v, want one key", keys)
		}
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert("empty", []byte{}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		got, err := s.Get("empty")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Get() = %v, want empty", got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get("missing"); !errors.Is(err, blobcache.ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("InsertObject", func(t *testing.T) {
		s := newStore(t)
		if err := s.InsertObject("flag", true); err != nil {
			t.Fatalf("InsertObject() error = %v", err)
		}
		got, err := blobcache.GetObject[bool](s, "flag")
		if err != nil {
			t.Fatalf("GetObject() error = %v", err)
		}
		if !got {
			t.Error("GetObject() = false, want true")
		}
	})

	t.Run("CreatedAt", func(t *testing.T) {
		s := newStore(t)
		ts, err := s.GetCreatedAt("k")
		if err != nil {
			t.Fatalf("GetCreatedAt() error = %v", err)
		}
		if ts != nil {
			t.Errorf("GetCreatedAt() = %v, want nil", ts)
		}

		_ = s.Insert("k", []byte("v"))
		ts, err = s.GetCreatedAt("k")
		if err != nil {
			t.Fatalf("GetCreatedAt() error = %v", err)
		}
		if ts == nil || ts.IsZero() {
			t.Errorf("GetCreatedAt() = %v, want a timestamp", ts)
		}
	})

	t.Run("GetAllKeys", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"b", "a", "c"} {
			_ = s.Insert(k, []byte(k))
		}
		keys, err := s.GetAllKeys()
		if err != nil {
			t.Fatalf("GetAllKeys() error = %v", err)
		}
		sort.Strings(keys)
		if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
			t.Errorf("GetAllKeys() = %v, want [a b c]", keys)
		}
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		s := newStore(t)
		_ = s.Insert("a", []byte("1"))
		_ = s.InsertObject("b", 2)
		if err := s.InvalidateAll(); err != nil {
			t.Fatalf("InvalidateAll() error = %v", err)
		}
		keys, _ := s.GetAllKeys()
		if len(keys) != 0 {
			t.Errorf("GetAllKeys() = %v, want empty", keys)
		}
		if ts, _ := s.GetCreatedAt("a"); ts != nil {
			t.Errorf("GetCreatedAt() = %v after InvalidateAll, want nil", ts)
		}
	})
}
