// ABOUTME: Settings schemas: named, fixed field lists with defaults
// ABOUTME: Each field persists as one blob cache key derived from schema and field name
package settings

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when a view does not expose a requested field
var ErrSchemaMismatch = errors.New("schema mismatch")

// Field is one named setting and the value reported when it was never written
type Field struct {
	Name    string
	Default any
}

// Schema is a named, statically declared set of fields
type Schema struct {
	Name   string
	Fields []Field
}

// Key derives the store key for a field
func (s Schema) Key(field string) string {
	return s.Name + ":" + field
}

// Has reports whether the schema declares field
func (s Schema) Has(field string) bool {
	_, ok := s.Field(field)
	return ok
}

// Field looks up a declared field by name
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in declaration order
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Validate rejects schemas without a name or with duplicate fields
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name must not be empty")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field name must not be empty", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %s", s.Name, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// CoreSchema holds application-wide behavior settings
var CoreSchema = Schema{
	Name: "CoreSettings",
	Fields: []Field{
		{Name: "EnableAutomaticLibraryUpdates", Default: true},
		{Name: "EnablePlaylistTimeout", Default: true},
		{Name: "PlaylistTimeout", Default: 1800},
		{Name: "EnableRemoteControl", Default: true},
		{Name: "Port", Default: 49587},
		{Name: "LockRemoteControl", Default: false},
		{Name: "RemoteControlPassword", Default: ""},
		{Name: "EnableVotingSystem", Default: false},
		{Name: "MaxVoteCount", Default: 10},
		{Name: "StreamHighBitrate", Default: false},
		{Name: "YoutubeDownloadPath", Default: ""},
		{Name: "YoutubeDownloadToLibrary", Default: false},
	},
}

// ViewSchema holds window and appearance settings
var ViewSchema = Schema{
	Name: "ViewSettings",
	Fields: []Field{
		{Name: "Volume", Default: 0.8},
		{Name: "WindowWidth", Default: 1000},
		{Name: "WindowHeight", Default: 600},
		{Name: "WindowLeft", Default: 0},
		{Name: "WindowTop", Default: 0},
		{Name: "AccentColor", Default: "Blue"},
		{Name: "AppTheme", Default: "BaseLight"},
		{Name: "GoFullScreenOnLock", Default: false},
		{Name: "ScaleFactor", Default: 1.0},
		{Name: "EnableChangelog", Default: true},
		{Name: "LocalSongsColumns", Default: ""},
		{Name: "YoutubeColumns", Default: ""},
	},
}
