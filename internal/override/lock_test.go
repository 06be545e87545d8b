package override

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock_LockUnlock(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lock := newFileLock(lockPath)

	if err := lock.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("lock file should exist after locking")
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if lock.file != nil {
		t.Error("expected file handle to be nil after unlocking")
	}

	// Second unlock is a no-op.
	if err := lock.Unlock(); err != nil {
		t.Errorf("second Unlock() should not error, got %v", err)
	}
}

func TestFileLock_Blocks(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock1 := newFileLock(lockPath)
	if err := lock1.Lock(); err != nil {
		t.Fatalf("lock1 Lock() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		lock2 := newFileLock(lockPath)
		if err := lock2.Lock(); err != nil {
			t.Errorf("lock2 Lock() error = %v", err)
			return
		}
		_ = lock2.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Error("lock2 should have blocked while lock1 is held")
	case <-time.After(30 * time.Millisecond):
	}

	if err := lock1.Unlock(); err != nil {
		t.Fatalf("lock1 Unlock() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("lock2 should have acquired lock after lock1 released")
	}
}

func TestFileLock_InvalidPath(t *testing.T) {
	t.Parallel()

	lock := newFileLock("/non-existent-dir/test.lock")
	if err := lock.Lock(); err == nil {
		_ = lock.Unlock()
		t.Error("expected error for lock in non-existent directory")
	}
}
