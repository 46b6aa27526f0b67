package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isBMD(p string) bool { return strings.HasSuffix(p, ".bmd") }

func await(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return ""
	}
}

func TestReportsSettledChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, isBMD, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 8)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(p string) { got <- p }) }()

	// several quick writes collapse into one report
	target := filepath.Join(dir, "hero.bmd")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte(i)}, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	assert.Equal(t, target, await(t, got))

	// files in directories created after start are seen too
	sub := filepath.Join(dir, "monster")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)
	nested := filepath.Join(sub, "orc.bmd")
	require.NoError(t, os.WriteFile(nested, []byte{1}, 0644))
	assert.Equal(t, nested, await(t, got))

	select {
	case p := <-got:
		t.Fatalf("unexpected report %s", p)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), time.Millisecond, nil, nil)
	assert.Error(t, err)
}

func TestDebounceTouchAfterFire(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(10*time.Millisecond, done)
	defer d.stop()

	d.touch("a.bmd")
	time.Sleep(50 * time.Millisecond) // fired, not yet received
	d.touch("a.bmd")

	assert.Equal(t, "a.bmd", <-d.fired)
	d.settle("a.bmd")
	select {
	case p := <-d.fired:
		t.Fatalf("reported %s twice", p)
	case <-time.After(100 * time.Millisecond):
	}

	// after settling, a new touch reports again
	d.touch("a.bmd")
	assert.Equal(t, "a.bmd", await(t, d.fired))
}

func TestDebounceRestartsPendingTimer(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(200*time.Millisecond, done)
	defer d.stop()

	start := time.Now()
	d.touch("b.bmd")
	time.Sleep(50 * time.Millisecond)
	d.touch("b.bmd")
	assert.Equal(t, "b.bmd", await(t, d.fired))
	assert.GreaterOrEqual(t, time.Since(start), 240*time.Millisecond)
}
