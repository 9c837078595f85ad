package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("New() error = nil, want error for empty path")
	}
}

func TestFileWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crystal.yaml")
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("schema: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Path: path, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			calls.Add(1)
			return nil
		})
	}()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("schema: {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callbacks = %d, want 1 for one burst", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestFileWatcher_CallbackErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Path: path, Debounce: 10 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Watch(ctx, func() error {
			calls.Add(1)
			return errors.New("invalid config")
		})
	}()
	time.Sleep(50 * time.Millisecond)

	_ = os.WriteFile(path, []byte("a"), 0o644)
	waitFor(t, func() bool { return calls.Load() == 1 })
	_ = os.WriteFile(path, []byte("b"), 0o644)
	waitFor(t, func() bool { return calls.Load() == 2 })
}

func TestFileWatcher_AlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Path: filepath.Join(dir, "c.yaml")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.running = true
	if err := w.Watch(context.Background(), func() error { return nil }); !errors.Is(err, ErrRunning) {
		t.Errorf("Watch() error = %v, want ErrRunning", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var last atomic.Int32
	for i := 1; i <= 3; i++ {
		n := int32(i)
		d.Trigger(func() { last.Store(n) })
	}
	waitFor(t, func() bool { return last.Load() != 0 })
	if last.Load() != 3 {
		t.Errorf("ran callback %d, want only the last (3)", last.Load())
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	d.Stop()
	d.Trigger(func() { ran.Store(true) })

	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Error("callback ran after Stop()")
	}
}
