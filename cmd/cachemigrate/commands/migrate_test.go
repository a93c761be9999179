// ABOUTME: End-to-end tests for migrate, status, and keys commands
// ABOUTME: Seeds a Badger legacy cache and migrates it into SQLite on disk
package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/harper/cachemigrate/internal/blobcache/badger"
	"github.com/harper/cachemigrate/internal/blobcache/sqlite"
	"github.com/harper/cachemigrate/internal/migration"
	"github.com/harper/cachemigrate/internal/settings"
)

// setupEnv points the config at fresh store paths in a temp dir
func setupEnv(t *testing.T) (legacyPath, destPath string) {
	t.Helper()
	dir := t.TempDir()
	legacyPath = filepath.Join(dir, "BlobCache")
	destPath = filepath.Join(dir, "blobs.db")

	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("LEGACY_BACKEND", "badger")
	t.Setenv("LEGACY_PATH", legacyPath)
	t.Setenv("DEST_BACKEND", "sqlite")
	t.Setenv("DEST_PATH", destPath)
	for _, k := range []string{"ARTWORK_PREFIX", "LOG_LEVEL", "SYNC_MAX_RETRIES", "SYNC_RETRY_DELAY"} {
		t.Setenv(k, "")
	}
	return legacyPath, destPath
}

func seedBadger(t *testing.T, path string) {
	t.Helper()
	s, err := badger.Open(path)
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	_ = s.Insert("Artwork:1", []byte("b1"))
	_ = s.Insert("Artwork:2", []byte("b2"))
	_ = s.Insert("lookup:artist", []byte("stale"))
	if err := settings.NewView(settings.CoreSchema, s).Set("Port", 1234); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func openDest(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(path)
	if err != nil {
		t.Fatalf("sqlite.NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrate_EndToEnd(t *testing.T) {
	legacyPath, destPath := setupEnv(t)
	seedBadger(t, legacyPath)

	out, err := executeCmd("migrate")
	if err != nil {
		t.Fatalf("migrate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Migration completed") {
		t.Errorf("output missing completion:\n%s", out)
	}
	if !strings.Contains(out, "Artwork copied:  2") {
		t.Errorf("output missing artwork count:\n%s", out)
	}

	dest := openDest(t, destPath)
	if needs, _ := migration.NeedsMigration(dest); needs {
		t.Error("destination not marked as migrated")
	}
	got, err := dest.Get("Artwork:2")
	if err != nil || string(got) != "b2" {
		t.Errorf("Artwork:2 = %q, %v; want b2", got, err)
	}
	if _, err := dest.Get("lookup:artist"); err == nil {
		t.Error("lookup key should not be migrated")
	}
	port, _ := settings.NewView(settings.CoreSchema, dest).Int("Port")
	if port != 1234 {
		t.Errorf("Port = %d, want 1234", port)
	}
	_ = dest.Close()

	legacy, err := badger.Open(legacyPath)
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	keys, _ := legacy.GetAllKeys()
	_ = legacy.Close()
	if len(keys) != 0 {
		t.Errorf("legacy keys = %v, want empty", keys)
	}

	out, err = executeCmd("migrate")
	if err != nil {
		t.Fatalf("second migrate error = %v", err)
	}
	if !strings.Contains(out, "Already migrated") {
		t.Errorf("second run output = %q, want already migrated", out)
	}
}

func TestMigrate_NoLegacyStore(t *testing.T) {
	_, destPath := setupEnv(t)

	out, err := executeCmd("migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "No legacy store") {
		t.Errorf("output = %q, want no legacy store notice", out)
	}

	dest := openDest(t, destPath)
	if needs, _ := migration.NeedsMigration(dest); !needs {
		t.Error("marker written without a legacy store")
	}
}

func TestMigrate_QuietSuppressesOutput(t *testing.T) {
	legacyPath, _ := setupEnv(t)
	seedBadger(t, legacyPath)

	out, err := executeCmd("--quiet", "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("quiet output = %q, want empty", out)
	}
}

func TestMigrate_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DEST_BACKEND", "redis")

	if _, err := executeCmd("migrate"); err == nil {
		t.Error("migrate should fail with an unknown backend")
	}
}

func TestStatus(t *testing.T) {
	legacyPath, _ := setupEnv(t)
	seedBadger(t, legacyPath)

	out, err := executeCmd("status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "Migrated:    no") {
		t.Errorf("status before migrate:\n%s", out)
	}
	if !strings.Contains(out, "Legacy keys: 4") {
		t.Errorf("status missing legacy count:\n%s", out)
	}

	if _, err := executeCmd("--quiet", "migrate"); err != nil {
		t.Fatalf("migrate error = %v", err)
	}

	out, _ = executeCmd("status")
	if !strings.Contains(out, "Migrated:    yes") {
		t.Errorf("status after migrate:\n%s", out)
	}
	if !strings.Contains(out, "Legacy keys: 0") {
		t.Errorf("legacy should be empty after migrate:\n%s", out)
	}
}

func TestStatus_DoesNotCreateStores(t *testing.T) {
	legacyPath, destPath := setupEnv(t)

	out, err := executeCmd("status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "Migrated:    no (store not found)") {
		t.Errorf("status without destination:\n%s", out)
	}
	if strings.Contains(out, "Dest keys:") {
		t.Errorf("status counted keys of a missing destination:\n%s", out)
	}

	for _, p := range []string{destPath, legacyPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("status created %s", p)
		}
	}
}

func TestKeys(t *testing.T) {
	legacyPath, _ := setupEnv(t)
	seedBadger(t, legacyPath)

	out, err := executeCmd("keys", "legacy", "--prefix", "Artwork")
	if err != nil {
		t.Fatalf("keys error = %v", err)
	}
	if !strings.Contains(out, "Artwork:1") || !strings.Contains(out, "Artwork:2") {
		t.Errorf("keys output missing artwork:\n%s", out)
	}
	if strings.Contains(out, "lookup:artist") {
		t.Errorf("prefix filter not applied:\n%s", out)
	}
	if !strings.Contains(out, "Total: 2 key(s)") {
		t.Errorf("keys output missing total:\n%s", out)
	}
}

func TestKeys_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown store", []string{"keys", "other"}},
		{"missing store", []string{"keys", "legacy"}},
		{"bad limit", []string{"keys", "dest", "--limit", "0"}},
		{"no args", []string{"keys"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCmd(tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestSyncStatus_NonCharm(t *testing.T) {
	setupEnv(t)

	out, err := executeCmd("sync", "status")
	if err != nil {
		t.Fatalf("sync status error = %v", err)
	}
	if !strings.Contains(out, "sync not used") {
		t.Errorf("output = %q", out)
	}

	if _, err := executeCmd("sync", "now"); err == nil {
		t.Error("sync now should fail for a non-charm destination")
	}
}

func TestOpenStore_Unknown(t *testing.T) {
	setupEnv(t)
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	var s blobcache.Store
	if s, err = openStore(NewRootCmd(), cfg, "akavache", "/tmp/x"); err == nil {
		_ = s.Close()
		t.Error("openStore() should reject unknown backends")
	}
}
