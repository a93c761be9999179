// ABOUTME: Store-bound settings views and the generic field copy routine
// ABOUTME: Reads and writes go straight to the backing blob cache
package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/spf13/cast"
)

// View binds a schema to one store instance
type View struct {
	schema Schema
	store  blobcache.Store
}

// NewView creates a view of schema backed by store
func NewView(schema Schema, store blobcache.Store) *View {
	return &View{schema: schema, store: store}
}

// Schema returns the schema this view exposes
func (v *View) Schema() Schema {
	return v.schema
}

func (v *View) field(name string) (Field, error) {
	f, ok := v.schema.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s has no field %s", ErrSchemaMismatch, v.schema.Name, name)
	}
	return f, nil
}

// Get returns the JSON-encoded value of a field, or its default if never written
func (v *View) Get(name string) ([]byte, error) {
	f, err := v.field(name)
	if err != nil {
		return nil, err
	}

	data, err := v.store.Get(v.schema.Key(name))
	if errors.Is(err, blobcache.ErrKeyNotFound) {
		return json.Marshal(f.Default)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", v.schema.Key(name), err)
	}
	return data, nil
}

// Set writes value as JSON under the field's key
func (v *View) Set(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return v.SetRaw(name, data)
}

// SetRaw writes an already encoded JSON value
func (v *View) SetRaw(name string, data []byte) error {
	if _, err := v.field(name); err != nil {
		return err
	}
	if err := v.store.Insert(v.schema.Key(name), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", v.schema.Key(name), err)
	}
	return nil
}

// Value decodes a field into a generic Go value
func (v *View) Value(name string) (any, error) {
	data, err := v.Get(name)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", v.schema.Key(name), err)
	}
	return out, nil
}

// Bool reads a field as a bool
func (v *View) Bool(name string) (bool, error) {
	val, err := v.Value(name)
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(val)
}

// Int reads a field as an int
func (v *View) Int(name string) (int, error) {
	val, err := v.Value(name)
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(val)
}

// Float reads a field as a float64
func (v *View) Float(name string) (float64, error) {
	val, err := v.Value(name)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(val)
}

// String reads a field as a string
func (v *View) String(name string) (string, error) {
	val, err := v.Value(name)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(val)
}

// CopyFields copies every field of src into the same-named field of dst.
// It returns the number of fields written.
func CopyFields(src, dst *View) (int, error) {
	copied := 0
	for _, name := range src.schema.FieldNames() {
		if !dst.schema.Has(name) {
			return copied, fmt.Errorf("%w: %s has no field %s", ErrSchemaMismatch, dst.schema.Name, name)
		}

		data, err := src.Get(name)
		if err != nil {
			return copied, err
		}
		if err := dst.SetRaw(name, data); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
