package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hour.csv")
	if err := os.WriteFile(path, []byte(testHeader+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(testCSV(testRow("2011-01-01", i, 1, 1))), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatalf("expected change notification")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hour.csv")
	if err := os.WriteFile(path, []byte(testHeader+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-w.Changes():
		t.Fatalf("unexpected notification for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchRejectsRemote(t *testing.T) {
	if _, err := Watch("https://example.com/hour.csv"); err == nil {
		t.Fatalf("expected error for remote location")
	}
}

func TestWatchCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hour.csv")
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
