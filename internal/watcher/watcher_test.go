package watcher

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Employee_List.csv")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	var calls atomic.Int32
	done := make(chan struct{}, 4)
	w, err := New([]string{target}, 150*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		done <- struct{}{}
		return nil
	}, quiet())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "HR-Travel-Policy.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	called := make(chan struct{}, 1)
	w, err := New([]string{target}, 50*time.Millisecond, func(context.Context) error {
		called <- struct{}{}
		return nil
	}, quiet())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-called:
		t.Fatal("unexpected notification for an unwatched file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	target := filepath.Join(t.TempDir(), "HR-Leave-Policy.md")
	w, err := New([]string{target}, 0, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "gone", "x.csv")}, 0, func(context.Context) error { return nil }, quiet())
	assert.Error(t, err)
}
