package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesChanges(t *testing.T) {
	root := t.TempDir()
	w, err := New([]string{root, filepath.Join(root, "missing")}, 100*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()

	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))

	select {
	case changed := <-batches:
		assert.Contains(t, changed, a)
		assert.Contains(t, changed, b)
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := New([]string{root}, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 8)
	go func() {
		w.Run(ctx, func(_ context.Context, changed []string) { batches <- changed })
	}()

	sub := filepath.Join(root, "posts")
	require.NoError(t, os.Mkdir(sub, 0o755))

	select {
	case <-batches:
	case <-time.After(5 * time.Second):
		t.Fatal("directory creation not reported")
	}

	nested := filepath.Join(sub, "new.md")
	require.NoError(t, os.WriteFile(nested, []byte("x"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-batches:
			for _, name := range changed {
				if name == nested {
					return
				}
			}
		case <-deadline:
			t.Fatal("change inside new directory not reported")
		}
	}
}
