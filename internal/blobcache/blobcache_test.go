// ABOUTME: Tests for the in-memory store, entry envelope, and typed helpers
// ABOUTME: Verifies key lifecycle, created-at tracking, and JSON round trips
package blobcache

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestMemoryStore_InsertGet(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Insert("Artwork:1", []byte{0x1, 0x2}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := s.Get("Artwork:1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, []byte{0x1, 0x2}) {
		t.Errorf("Get() = %v, want [1 2]", got)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get("nope")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryStore_InsertCopiesInput(t *testing.T) {
	s := NewMemoryStore()
	data := []byte("abc")

	_ = s.Insert("k", data)
	data[0] = 'z'

	got, _ := s.Get("k")
	if string(got) != "abc" {
		t.Errorf("stored payload was mutated: %q", got)
	}
}

func TestMemoryStore_CreatedAt(t *testing.T) {
	s := NewMemoryStore()

	ts, err := s.GetCreatedAt("k")
	if err != nil {
		t.Fatalf("GetCreatedAt() error = %v", err)
	}
	if ts != nil {
		t.Errorf("GetCreatedAt() = %v, want nil for absent key", ts)
	}

	before := time.Now().Add(-time.Second)
	_ = s.InsertObject("k", true)

	ts, err = s.GetCreatedAt("k")
	if err != nil {
		t.Fatalf("GetCreatedAt() error = %v", err)
	}
	if ts == nil {
		t.Fatal("GetCreatedAt() = nil after InsertObject")
	}
	if ts.Before(before) {
		t.Errorf("GetCreatedAt() = %v, want after %v", ts, before)
	}
}

func TestMemoryStore_InvalidateAll(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Insert("a", []byte("1"))
	_ = s.Insert("b", []byte("2"))

	if err := s.InvalidateAll(); err != nil {
		t.Fatalf("InvalidateAll() error = %v", err)
	}

	keys, _ := s.GetAllKeys()
	if len(keys) != 0 {
		t.Errorf("GetAllKeys() = %v, want empty", keys)
	}
}

func TestGetObject(t *testing.T) {
	s := NewMemoryStore()

	type window struct {
		Width  int
		Height int
	}
	if err := s.InsertObject("w", window{Width: 800, Height: 600}); err != nil {
		t.Fatalf("InsertObject() error = %v", err)
	}

	got, err := GetObject[window](s, "w")
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if got.Width != 800 || got.Height != 600 {
		t.Errorf("GetObject() = %+v, want {800 600}", got)
	}

	if _, err := GetObject[bool](s, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetObject() missing error = %v, want ErrKeyNotFound", err)
	}
}

func TestKeysWithPrefix(t *testing.T) {
	s := NewMemoryStore()
	for _, k := range []string{"Artwork:2", "Other:1", "Artwork:1"} {
		_ = s.Insert(k, []byte("x"))
	}

	got, err := KeysWithPrefix(s, "Artwork")
	if err != nil {
		t.Fatalf("KeysWithPrefix() error = %v", err)
	}
	want := []string{"Artwork:1", "Artwork:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeysWithPrefix() = %v, want %v", got, want)
	}
}

func TestEntry_EncodeDecode(t *testing.T) {
	e, err := NewObjectEntry(42)
	if err != nil {
		t.Fatalf("NewObjectEntry() error = %v", err)
	}

	data, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := DecodeEntry(data)
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}
	if string(got.Value) != "42" {
		t.Errorf("Value = %q, want 42", got.Value)
	}
	if got.TypeName != "int" {
		t.Errorf("TypeName = %q, want int", got.TypeName)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestDecodeEntry_Garbage(t *testing.T) {
	if _, err := DecodeEntry([]byte("not json")); err == nil {
		t.Error("DecodeEntry() expected error for garbage input")
	}
}
