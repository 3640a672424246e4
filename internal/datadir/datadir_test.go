package datadir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gestaovendas/internal/domain"
)

// blockedDir returns a path that cannot be created because a regular file sits where its parent should be.
func blockedDir(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	file := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	return filepath.Join(file, "data")
}

func TestResolvePrefersPrimary(t *testing.T) {
	primary := filepath.Join(t.TempDir(), PrimaryDirName)
	fallback := filepath.Join(t.TempDir(), FallbackDirName)
	res, err := Resolve(primary, fallback)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Dir != primary || res.UsedFallback {
		t.Fatalf("expected primary, got %+v", res)
	}
	if fi, err := os.Stat(primary); err != nil || !fi.IsDir() {
		t.Fatalf("primary dir not created: %v", err)
	}
	if _, err := os.Stat(fallback); !os.IsNotExist(err) {
		t.Fatalf("fallback should not be touched, stat err: %v", err)
	}
}

func TestResolveFallsBack(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), FallbackDirName)
	res, err := Resolve(blockedDir(t), fallback)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Dir != fallback || !res.UsedFallback || res.PrimaryErr == nil {
		t.Fatalf("expected fallback resolution, got %+v", res)
	}
}

func TestResolveBothFail(t *testing.T) {
	_, err := Resolve(blockedDir(t), blockedDir(t))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestEnsureRejectsEmpty(t *testing.T) {
	if err := Ensure("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
