package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.yaml")
	if err := os.WriteFile(path, []byte("output: table\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	changed := make(chan string, 1)
	w.OnChange(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	w.StartAsync()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("output: json\n"), 0600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case p := <-changed:
		if filepath.Base(p) != "cli.yaml" {
			t.Errorf("changed path = %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcher_StopIsIdempotentForCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	w.OnChange(func(string) {})
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
