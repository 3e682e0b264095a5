package fswatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(root, 50*time.Millisecond, logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func expectTrigger(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Triggers():
	case <-time.After(5 * time.Second):
		t.Fatal("no trigger after filesystem activity")
	}
}

func TestWatcher_FileWriteTriggers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ght"), 0o755))

	w := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(root, "ght", "20200408_state_rawsearch.csv")
	require.NoError(t, os.WriteFile(path, []byte("geo_id,val\n"), 0o644))

	expectTrigger(t, w)
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()

	w := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// The directory did not exist when the watcher started.
	sub := filepath.Join(root, "fb_survey")
	require.NoError(t, os.Mkdir(sub, 0o755))
	expectTrigger(t, w)

	path := filepath.Join(sub, "weekly_202015_county_cli.csv")
	require.NoError(t, os.WriteFile(path, []byte("geo_id,val\n"), 0o644))
	expectTrigger(t, w)
}

func TestWatcher_BurstCoalesces(t *testing.T) {
	root := t.TempDir()

	w := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, fmt.Sprintf("2020040%d_state_sig.csv", i+1))
		require.NoError(t, os.WriteFile(name, []byte("x\n"), 0o644))
	}

	expectTrigger(t, w)

	// The burst lands as one debounced trigger, not five.
	select {
	case <-w.Triggers():
		t.Fatal("burst produced more than one trigger")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(filepath.Join(t.TempDir(), "nope"), time.Millisecond, logger)
	assert.Error(t, err)
}
