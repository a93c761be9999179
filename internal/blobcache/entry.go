// ABOUTME: Entry envelope for backends without native per-key metadata
// ABOUTME: Wraps payload bytes with a type name and creation timestamp
package blobcache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is the persisted form of a single key in badger and charm backends
type Entry struct {
	Value     []byte    `json:"value"`
	TypeName  string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry wraps raw bytes written with Insert
func NewEntry(data []byte) Entry {
	return Entry{Value: data, CreatedAt: time.Now().UTC()}
}

// NewObjectEntry encodes value as JSON and records its type name
func NewObjectEntry(value any) (Entry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal value: %w", err)
	}
	return Entry{Value: data, TypeName: TypeName(value), CreatedAt: time.Now().UTC()}, nil
}

// Encode serializes the envelope
func (e Entry) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses an envelope written by Encode
func DecodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	return e, nil
}
