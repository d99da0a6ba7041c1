package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"episode1.mp3", true},
		{"episode1.M4A", true},
		{"clip.mkv", true},
		{"notes.txt", false},
		{"episode1.srt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := isMediaFile(tt.path); got != tt.want {
			t.Errorf("isMediaFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent"), 1, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestRunDispatchesConcurrently(t *testing.T) {
	dir := t.TempDir()

	var inFlight, peak atomic.Int32
	handled := make(chan string, 4)
	handler := func(ctx context.Context, path string) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// Hold the slot long enough for the other handler to enter.
		time.Sleep(300 * time.Millisecond)
		handled <- filepath.Base(path)
		return nil
	}

	w, err := New(dir, 2, handler)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for _, name := range []string{"a.mp3", "b.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	// Both files settle in parallel: if the settle delay blocked the event
	// loop, the second handler could not start until well past one delay.
	deadline := time.After(settleDelay + 900*time.Millisecond)
	got := map[string]bool{}
	for len(got) < 2 {
		select {
		case name := <-handled:
			got[name] = true
		case <-deadline:
			t.Fatalf("handled %v before deadline, want both files", got)
		}
	}

	if peak.Load() < 2 {
		t.Errorf("peak concurrent handlers = %d, want 2", peak.Load())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
