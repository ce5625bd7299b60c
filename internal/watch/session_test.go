package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type chanNotifier struct {
	events chan string
	errs   chan error
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{events: make(chan string), errs: make(chan error)}
}

func (n *chanNotifier) Events() <-chan string { return n.events }
func (n *chanNotifier) Errors() <-chan error  { return n.errs }
func (n *chanNotifier) Close() error          { return nil }

type recorder struct {
	mu        sync.Mutex
	successes []Report
	failures  []Report
	states    []State
}

func (r *recorder) options(o Options) Options {
	o.OnSuccess = func(rep Report) { r.mu.Lock(); r.successes = append(r.successes, rep); r.mu.Unlock() }
	o.OnFailure = func(rep Report) { r.mu.Lock(); r.failures = append(r.failures, rep); r.mu.Unlock() }
	o.OnState = func(s State) { r.mu.Lock(); r.states = append(r.states, s); r.mu.Unlock() }
	return o
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.successes), len(r.failures)
}

func start(t *testing.T, s *Session) <-chan error {
	t.Helper()
	errC := make(chan error, 1)
	go func() { errC <- s.Run(context.Background()) }()
	return errC
}

func waitArmed(t *testing.T, c *FakeClock, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Armed() == n }, 2*time.Second, time.Millisecond)
}

func TestSessionDebounce(t *testing.T) {
	clock := NewFakeClock(t0)
	n := newChanNotifier()
	rec := &recorder{}
	var runs atomic.Int32
	var seen [][]string
	s, err := NewSession(rec.options(Options{
		Debounce: 500 * time.Millisecond,
		Clock:    clock,
		Notifier: n,
		Run: func(_ context.Context, changes []string) ([]byte, error) {
			runs.Add(1)
			seen = append(seen, changes)
			return []byte("out"), nil
		},
	}))
	require.NoError(t, err)
	errC := start(t, s)

	for _, p := range []string{"b.rs", "a.rs", "b.rs"} {
		n.events <- p
	}
	waitArmed(t, clock, 3)

	clock.Advance(499 * time.Millisecond)
	require.Zero(t, runs.Load())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { ok, _ := rec.counts(); return ok == 1 }, 2*time.Second, time.Millisecond)
	require.EqualValues(t, 1, runs.Load())

	n.events <- "c.rs"
	waitArmed(t, clock, 4)
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { ok, _ := rec.counts(); return ok == 2 }, 2*time.Second, time.Millisecond)

	s.Cancel()
	require.NoError(t, <-errC)
	require.EqualValues(t, 2, runs.Load())
	require.Equal(t, [][]string{{"a.rs", "b.rs"}, {"c.rs"}}, seen)
	require.Equal(t, "out", string(s.LastOutput()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, 2, rec.successes[1].Seq)
	require.Equal(t, Terminated, rec.states[len(rec.states)-1])
}

func TestSessionIgnoresOwnOutput(t *testing.T) {
	clock := NewFakeClock(t0)
	n := newChanNotifier()
	rec := &recorder{}
	out := filepath.Join(t.TempDir(), "src", "bundle.rs")
	var seen [][]string
	s, err := NewSession(rec.options(Options{
		Debounce: 100 * time.Millisecond,
		Clock:    clock,
		Notifier: n,
		Ignore:   []string{out},
		Run: func(_ context.Context, changes []string) ([]byte, error) {
			seen = append(seen, changes)
			return []byte("out"), nil
		},
	}))
	require.NoError(t, err)
	errC := start(t, s)

	n.events <- out
	n.events <- filepath.Join(filepath.Dir(out), ".", "bundle.rs")
	require.Zero(t, clock.Armed())

	n.events <- "a.rs"
	waitArmed(t, clock, 1)
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { ok, _ := rec.counts(); return ok == 1 }, 2*time.Second, time.Millisecond)

	// the run's own write comes back as a change and must not re-arm
	n.events <- out
	s.Cancel()
	require.NoError(t, <-errC)
	require.Equal(t, 1, clock.Armed())
	require.Equal(t, [][]string{{"a.rs"}}, seen)
}

func TestSessionSurvivesFailures(t *testing.T) {
	clock := NewFakeClock(t0)
	n := newChanNotifier()
	rec := &recorder{}
	var calls atomic.Int32
	boom := errors.New("boom")
	s, err := NewSession(rec.options(Options{
		Debounce: 100 * time.Millisecond,
		Clock:    clock,
		Notifier: n,
		Run: func(context.Context, []string) ([]byte, error) {
			if calls.Add(1) == 1 {
				return nil, boom
			}
			return []byte("ok"), nil
		},
	}))
	require.NoError(t, err)
	errC := start(t, s)

	n.events <- "a.rs"
	waitArmed(t, clock, 1)
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { _, bad := rec.counts(); return bad == 1 }, 2*time.Second, time.Millisecond)

	n.errs <- errors.New("watcher overflow")
	require.Eventually(t, func() bool { _, bad := rec.counts(); return bad == 2 }, 2*time.Second, time.Millisecond)

	n.events <- "a.rs"
	waitArmed(t, clock, 2)
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { ok, _ := rec.counts(); return ok == 1 }, 2*time.Second, time.Millisecond)

	s.Cancel()
	require.NoError(t, <-errC)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.ErrorIs(t, rec.failures[0].Err, boom)
	require.Equal(t, 1, rec.failures[0].Seq)
	require.Zero(t, rec.failures[1].Seq)
	require.Contains(t, rec.states, Failed)
	// a failed run reports Failed and settles to Idle before the next change
	require.Equal(t, []State{Idle, Scheduled, Running, Failed, Idle}, rec.states[:5])
	require.Equal(t, "ok", string(s.LastOutput()))
}

func TestSessionCancelWaitsForRun(t *testing.T) {
	clock := NewFakeClock(t0)
	n := newChanNotifier()
	rec := &recorder{}
	started := make(chan struct{})
	gate := make(chan struct{})
	s, err := NewSession(rec.options(Options{
		Debounce: 10 * time.Millisecond,
		Clock:    clock,
		Notifier: n,
		Run: func(ctx context.Context, _ []string) ([]byte, error) {
			close(started)
			<-gate
			return []byte("late"), ctx.Err()
		},
	}))
	require.NoError(t, err)
	errC := start(t, s)

	n.events <- "a.rs"
	waitArmed(t, clock, 1)
	clock.Advance(10 * time.Millisecond)
	<-started

	s.Cancel()
	select {
	case err := <-errC:
		t.Fatalf("session ended before the run finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-errC)
	ok, _ := rec.counts()
	require.Equal(t, 1, ok)
	require.Equal(t, "late", string(s.LastOutput()))
}

func TestSessionContextCancel(t *testing.T) {
	s, err := NewSession(Options{
		Notifier: newChanNotifier(),
		Run:      func(context.Context, []string) ([]byte, error) { return nil, nil },
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	require.False(t, s.Token().Cancelled())
}

func TestNewSessionRequiresRunner(t *testing.T) {
	_, err := NewSession(Options{Notifier: newChanNotifier()})
	require.ErrorIs(t, err, ErrNoRunner)
}

func TestCancelTokenIdempotent(t *testing.T) {
	tok := NewCancelToken()
	require.False(t, tok.Cancelled())
	tok.Cancel()
	tok.Cancel()
	require.True(t, tok.Cancelled())
	<-tok.Done()
}

func TestFSNotifier(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "game"), 0o755))

	n, err := NewFSNotifier(src)
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "game", "grid.rs"), []byte("fn f() {}"), 0o600))
	waitEvent(t, n, "grid.rs")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "ai"), 0o755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(src, "ai", "mod.rs"), []byte("fn g() {}"), 0o600))
	waitEvent(t, n, filepath.Join("ai", "mod.rs"))
}

func TestFSNotifierWatchesManifest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	manifest := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\n"), 0o600))

	n, err := NewFSNotifier(src, manifest)
	require.NoError(t, err)
	defer n.Close()

	// siblings of the manifest are not part of the tree
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.rs"), []byte("fn main() {}"), 0o600))
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n"), 0o600))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-n.Events():
			require.NotEqual(t, filepath.Join(dir, "build.rs"), p)
			if p == manifest {
				return
			}
		case err := <-n.Errors():
			t.Fatalf("notifier error: %v", err)
		case <-deadline:
			t.Fatal("no event for Cargo.toml")
		}
	}
}

func TestFSNotifierRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.rs")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	_, err := NewFSNotifier(path)
	require.Error(t, err)
}

func waitEvent(t *testing.T, n *FSNotifier, suffix string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-n.Events():
			require.False(t, strings.HasSuffix(p, ".txt"), "unexpected event for %s", p)
			if strings.HasSuffix(p, suffix) {
				return
			}
		case err := <-n.Errors():
			t.Fatalf("notifier error: %v", err)
		case <-deadline:
			t.Fatalf("no event for %s", suffix)
		}
	}
}
