// ABOUTME: Tests for settings schemas, views, and the field copy routine
// ABOUTME: Uses in-memory blob caches as backing stores
package settings

import (
	"errors"
	"testing"

	"github.com/harper/cachemigrate/internal/blobcache"
)

var testSchema = Schema{
	Name: "Test",
	Fields: []Field{
		{Name: "A", Default: 0},
		{Name: "B", Default: ""},
	},
}

func TestSchema_Key(t *testing.T) {
	if got := CoreSchema.Key("Port"); got != "CoreSettings:Port" {
		t.Errorf("Key() = %q, want CoreSettings:Port", got)
	}
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		wantErr bool
	}{
		{"core", CoreSchema, false},
		{"view", ViewSchema, false},
		{"no name", Schema{Fields: []Field{{Name: "A"}}}, true},
		{"empty field", Schema{Name: "X", Fields: []Field{{Name: ""}}}, true},
		{"duplicate", Schema{Name: "X", Fields: []Field{{Name: "A"}, {Name: "A"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestView_DefaultsWhenUnset(t *testing.T) {
	v := NewView(ViewSchema, blobcache.NewMemoryStore())

	vol, err := v.Float("Volume")
	if err != nil {
		t.Fatalf("Float() error = %v", err)
	}
	if vol != 0.8 {
		t.Errorf("Volume = %v, want 0.8", vol)
	}

	theme, err := v.String("AppTheme")
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	if theme != "BaseLight" {
		t.Errorf("AppTheme = %q, want BaseLight", theme)
	}
}

func TestView_SetWritesBackingStore(t *testing.T) {
	store := blobcache.NewMemoryStore()
	v := NewView(CoreSchema, store)

	if err := v.Set("Port", 8080); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := store.Get("CoreSettings:Port")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if string(raw) != "8080" {
		t.Errorf("stored = %q, want 8080", raw)
	}

	port, err := v.Int("Port")
	if err != nil {
		t.Fatalf("Int() error = %v", err)
	}
	if port != 8080 {
		t.Errorf("Port = %d, want 8080", port)
	}

	// a second view on the same store sees the write
	again, _ := NewView(CoreSchema, store).Int("Port")
	if again != 8080 {
		t.Errorf("second view Port = %d, want 8080", again)
	}
}

func TestView_Bool(t *testing.T) {
	v := NewView(CoreSchema, blobcache.NewMemoryStore())
	_ = v.Set("LockRemoteControl", true)

	got, err := v.Bool("LockRemoteControl")
	if err != nil {
		t.Fatalf("Bool() error = %v", err)
	}
	if !got {
		t.Error("LockRemoteControl = false, want true")
	}
}

func TestView_UnknownField(t *testing.T) {
	v := NewView(CoreSchema, blobcache.NewMemoryStore())

	if _, err := v.Get("Nope"); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Get() error = %v, want ErrSchemaMismatch", err)
	}
	if err := v.Set("Nope", 1); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Set() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestCopyFields(t *testing.T) {
	oldStore := blobcache.NewMemoryStore()
	newStore := blobcache.NewMemoryStore()

	src := NewView(testSchema, oldStore)
	_ = src.Set("A", 1)
	_ = src.Set("B", "x")

	dst := NewView(testSchema, newStore)
	n, err := CopyFields(src, dst)
	if err != nil {
		t.Fatalf("CopyFields() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CopyFields() copied %d, want 2", n)
	}

	a, _ := dst.Int("A")
	b, _ := dst.String("B")
	if a != 1 || b != "x" {
		t.Errorf("dst = {A: %d, B: %q}, want {A: 1, B: \"x\"}", a, b)
	}
}

func TestCopyFields_CopiesDefaults(t *testing.T) {
	dstStore := blobcache.NewMemoryStore()
	n, err := CopyFields(NewView(ViewSchema, blobcache.NewMemoryStore()), NewView(ViewSchema, dstStore))
	if err != nil {
		t.Fatalf("CopyFields() error = %v", err)
	}
	if n != len(ViewSchema.Fields) {
		t.Errorf("CopyFields() copied %d, want %d", n, len(ViewSchema.Fields))
	}

	keys, _ := dstStore.GetAllKeys()
	if len(keys) != len(ViewSchema.Fields) {
		t.Errorf("destination has %d keys, want %d", len(keys), len(ViewSchema.Fields))
	}
}

func TestCopyFields_SchemaMismatch(t *testing.T) {
	narrow := Schema{Name: "Test", Fields: []Field{{Name: "A", Default: 0}}}

	_, err := CopyFields(NewView(testSchema, blobcache.NewMemoryStore()), NewView(narrow, blobcache.NewMemoryStore()))
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("CopyFields() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	all := r.All()
	if len(all) != 2 || all[0].Name != "CoreSettings" || all[1].Name != "ViewSettings" {
		t.Fatalf("All() = %v, want [CoreSettings ViewSettings]", all)
	}

	if _, ok := r.Lookup("ViewSettings"); !ok {
		t.Error("Lookup(ViewSettings) not found")
	}
	if err := r.Register(CoreSchema); err == nil {
		t.Error("Register() expected error for duplicate schema")
	}
	if err := r.Register(Schema{}); err == nil {
		t.Error("Register() expected error for invalid schema")
	}
}
