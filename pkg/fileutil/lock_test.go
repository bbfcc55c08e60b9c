package fileutil

import (
	stderrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

func TestWithLock_RunsFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	ran := false
	err := WithLock(path, LockExclusive, time.Second, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !ran {
		t.Error("critical section did not run")
	}
}

func TestWithLock_PropagatesFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	want := stderrors.New("boom")
	err := WithLock(path, LockExclusive, time.Second, func() error {
		return want
	})
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestWithLock_ReleasedAfterFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := WithLock(path, LockExclusive, time.Second, func() error { return nil }); err != nil {
		t.Fatal(err)
	}

	// A second acquisition must succeed immediately if the first
	// released properly.
	err := WithLock(path, LockExclusive, 100*time.Millisecond, func() error { return nil })
	if err != nil {
		t.Errorf("lock was not released: %v", err)
	}
}

// Each WithLock call opens its own descriptor, so concurrent goroutines
// contend exactly like separate processes would.
func TestWithLock_ExclusiveMutualExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	var inside atomic.Int32
	var maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(path, LockExclusive, 10*time.Second, func() error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("WithLock() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Errorf("max concurrent exclusive holders = %d, want 1", got)
	}
}

func TestWithLock_SharedBlocksExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- WithLock(path, LockShared, time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := WithLock(path, LockExclusive, 50*time.Millisecond, func() error { return nil })
	close(release)

	if !stderrors.Is(err, mcpmerrors.ErrLockTimeout) {
		t.Errorf("error = %v, want ErrLockTimeout while shared lock held", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("shared holder failed: %v", err)
	}
}

func TestWithLock_SharedAllowsShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- WithLock(path, LockShared, time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := WithLock(path, LockShared, 500*time.Millisecond, func() error { return nil })
	close(release)

	if err != nil {
		t.Errorf("second shared lock failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first shared holder failed: %v", err)
	}
}

func TestWithLock_TimeoutDistinctError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- WithLock(path, LockExclusive, time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	start := time.Now()
	err := WithLock(path, LockExclusive, 100*time.Millisecond, func() error {
		t.Error("critical section must not run on timeout")
		return nil
	})
	elapsed := time.Since(start)
	close(release)

	if !stderrors.Is(err, mcpmerrors.ErrLockTimeout) {
		t.Errorf("error = %v, want ErrLockTimeout", err)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("returned after %v, before the timeout elapsed", elapsed)
	}
	if err := <-done; err != nil {
		t.Fatalf("holder failed: %v", err)
	}
}
