package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	writeFile(t, path, "before\n")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "after\n")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	writeFile(t, path, "0\n")

	w, err := New(path, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		writeFile(t, path, "burst\n")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	// The burst must have collapsed into the one notification we consumed.
	select {
	case <-w.Changed():
		t.Error("burst produced more than one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	writeFile(t, path, "x\n")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(dir, "other.txt"), "noise\n")

	select {
	case <-w.Changed():
		t.Error("unrelated file triggered a notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSeesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	writeFile(t, path, "old\n")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	// The save path writers use: temp file then rename over the target.
	tmp := path + ".tmp"
	writeFile(t, tmp, "new\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("rename-replace not detected")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	writeFile(t, path, "x\n")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
