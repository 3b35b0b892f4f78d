package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "state.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("failed to get default path: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}

	if !strings.Contains(path, filepath.Join(".taskdeck", "state.db")) {
		t.Errorf("expected path to contain .taskdeck/state.db, got %q", path)
	}
}

func TestSaveAndLoadCredentials(t *testing.T) {
	db := setupTestDB(t)

	want := Credentials{UserID: 7, FullName: "Ann", Token: "t1"}
	if err := db.SaveCredentials(want); err != nil {
		t.Fatalf("failed to save credentials: %v", err)
	}

	got, ok, err := db.LoadCredentials()
	if err != nil {
		t.Fatalf("failed to load credentials: %v", err)
	}
	if !ok {
		t.Fatal("expected stored credentials")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSaveCredentials_Overwrites(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveCredentials(Credentials{UserID: 1, FullName: "Old", Token: "old"}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	want := Credentials{UserID: 2, FullName: "New", Token: "new"}
	if err := db.SaveCredentials(want); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	got, ok, err := db.LoadCredentials()
	if err != nil || !ok {
		t.Fatalf("load after overwrite: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadCredentials_Empty(t *testing.T) {
	db := setupTestDB(t)

	_, ok, err := db.LoadCredentials()
	if err != nil {
		t.Fatalf("load from empty store: %v", err)
	}
	if ok {
		t.Error("expected no credentials in a fresh store")
	}
}

func TestClearCredentials(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveCredentials(Credentials{UserID: 7, FullName: "Ann", Token: "t1"}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := db.ClearCredentials(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	_, ok, err := db.LoadCredentials()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if ok {
		t.Error("expected no credentials after clear")
	}

	// Clearing twice is fine
	if err := db.ClearCredentials(); err != nil {
		t.Errorf("second clear should not fail: %v", err)
	}
}
