package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/XiaoConstantine/minigrep/pkg/walk"
)

func startWatcher(t *testing.T, root string) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(root, walk.New(nil))
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	batches := make(chan []string, 16)
	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
		_ = w.Close()
	}()
	return batches, cancel, done
}

func waitFor(t *testing.T, batches <-chan []string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-batches:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))

	batches, cancel, done := startWatcher(t, root)

	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0644))
	waitFor(t, batches, target)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherTracksNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	batches, cancel, done := startWatcher(t, root)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitFor(t, batches, sub)

	// The new directory is now watched too.
	nested := filepath.Join(sub, "n.txt")
	require.NoError(t, os.WriteFile(nested, []byte("n"), 0644))
	waitFor(t, batches, nested)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherSingleFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	file := filepath.Join(t.TempDir(), "only.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	batches, cancel, done := startWatcher(t, file)
	require.NoError(t, os.WriteFile(file, []byte("y"), 0644))
	waitFor(t, batches, file)

	cancel()
	assert.NoError(t, <-done)
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), walk.New(nil))
	assert.Error(t, err)
}
