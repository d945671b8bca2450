package rollout

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	rolloutPath := filepath.Join(dir, "session.jsonl")

	lock, err := AcquireLock(rolloutPath, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	if _, err := AcquireLock(rolloutPath, 200*time.Millisecond); err == nil {
		t.Fatal("expected second AcquireLock to fail while held")
	}
}

func TestAcquireLockReclaimsStaleLockFromDeadPID(t *testing.T) {
	dir := t.TempDir()
	rolloutPath := filepath.Join(dir, "session.jsonl")
	path := lockPath(rolloutPath)

	if err := os.WriteFile(path, []byte(`{"pid":999999999,"created_at":"2020-01-01T00:00:00Z"}`), 0o600); err != nil {
		t.Fatalf("seed stale lock: %v", err)
	}

	lock, err := AcquireLock(rolloutPath, time.Second)
	if err != nil {
		t.Fatalf("expected stale lock from a dead pid to be reclaimed: %v", err)
	}
	defer lock.Release()
}

func TestLockReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	rolloutPath := filepath.Join(dir, "session.jsonl")

	lock, err := AcquireLock(rolloutPath, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release should be a no-op, got %v", err)
	}
}
