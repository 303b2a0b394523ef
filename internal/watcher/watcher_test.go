package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{0, "NONE"},
		{OpWrite, "WRITE"},
		{OpCreate | OpRename, "CREATE|RENAME"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestAddRemove(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "script.yaml")
	writeFile(t, path, "steps: []\n")

	if err := w.Add(path); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if !w.IsWatching(path) {
		t.Error("should be watching path")
	}
	if err := w.Add(path); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("second Add error = %v, want ErrAlreadyWatching", err)
	}
	if err := w.Remove(path); err != nil {
		t.Fatalf("Remove error = %v", err)
	}
	if w.IsWatching(path) {
		t.Error("should not be watching path")
	}
	if err := w.Remove(path); !errors.Is(err, ErrNotWatching) {
		t.Errorf("second Remove error = %v, want ErrNotWatching", err)
	}
}

func TestAddMissing(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	err = w.Add(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Add error = %v, want ErrPathNotExist", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
	if err := w.Add("x"); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add after Close error = %v, want ErrWatcherClosed", err)
	}
}

func TestClosedWatcherRejectsExistingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toml")
	writeFile(t, path, "a = 1")

	w, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := w.Add(path); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Add(path); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add after Close error = %v, want ErrWatcherClosed", err)
	}
	if err := w.Remove(path); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Remove after Close error = %v, want ErrWatcherClosed", err)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w, err := New(WithClock(clock), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "")
	if err := w.Add(path); err != nil {
		t.Fatalf("Add error = %v", err)
	}

	// Feed synthetic events so the fake clock alone decides delivery.
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})
	clock.Advance(30 * time.Millisecond)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	clock.Advance(30 * time.Millisecond)

	select {
	case ev := <-w.Events():
		t.Fatalf("event delivered before quiet period: %+v", ev)
	default:
	}

	clock.Advance(30 * time.Millisecond)
	select {
	case ev := <-w.Events():
		if ev.Path != path {
			t.Errorf("Path = %q, want %q", ev.Path, path)
		}
		if !ev.Op.Has(OpCreate) || !ev.Op.Has(OpWrite) {
			t.Errorf("Op = %v, want CREATE|WRITE", ev.Op)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after quiet period")
	}
}

func TestIgnoresUnwatchedSibling(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w, err := New(WithClock(clock))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeFile(t, path, "")
	if err := w.Add(path); err != nil {
		t.Fatalf("Add error = %v", err)
	}

	w.handle(fsnotify.Event{Name: filepath.Join(dir, "b.yaml"), Op: fsnotify.Write})
	clock.Advance(time.Second)

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestWriteDelivered(t *testing.T) {
	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "script.yaml")
	writeFile(t, path, "steps: []\n")
	if err := w.Add(path); err != nil {
		t.Fatalf("Add error = %v", err)
	}

	writeFile(t, path, "steps:\n  - focus: true\n")

	select {
	case ev := <-w.Events():
		if ev.Path != path {
			t.Errorf("Path = %q, want %q", ev.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for write event")
	}
}
