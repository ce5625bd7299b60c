package watch

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"rsbundle/internal/config"
)

// RunFunc is one pipeline attempt. It must not keep out after returning.
type RunFunc func(ctx context.Context, changes []string) (out []byte, err error)

// Report describes a finished run for the sinks.
type Report struct {
	Seq     int
	Changes []string
	Output  []byte
	Err     error
	Elapsed time.Duration
}

// Options configure a Session. Run and Notifier are required.
type Options struct {
	Debounce time.Duration // 0 means config.DefaultDebounce
	Clock    Clock         // nil means RealClock
	Notifier Notifier
	Run      RunFunc

	// Ignore lists paths whose changes are not changes, e.g. a bundle
	// written inside the watched directory.
	Ignore []string

	OnSuccess func(Report)
	OnFailure func(Report) // also receives notifier errors (Seq 0)
	OnState   func(State)
}

// Session owns a Machine and drives it from one goroutine.
type Session struct {
	opts  Options
	token *CancelToken
	m     *Machine

	last    []byte // output of the last successful run
	ignored map[string]bool
}

var ErrNoRunner = errors.New("watch: Options.Run and Options.Notifier are required")

func NewSession(opts Options) (*Session, error) {
	if opts.Run == nil || opts.Notifier == nil {
		return nil, ErrNoRunner
	}
	if opts.Debounce <= 0 {
		opts.Debounce = config.DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	s := &Session{opts: opts, token: NewCancelToken(), m: NewMachine(opts.Debounce), ignored: make(map[string]bool)}
	for _, p := range opts.Ignore {
		s.ignored[cleanPath(p)] = true
	}
	return s, nil
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Token returns the cancellation token; cancelling it ends Run once the
// in-flight run, if any, has finished.
func (s *Session) Token() *CancelToken { return s.token }

// Cancel is Token().Cancel().
func (s *Session) Cancel() { s.token.Cancel() }

// LastOutput returns the output of the last successful run. Only valid
// after Run has returned.
func (s *Session) LastOutput() []byte { return s.last }

type runResult struct {
	out []byte
	err error
}

// Run is the actor loop. It returns nil after cancellation; ctx
// cancellation counts as cancellation.
func (s *Session) Run(ctx context.Context) error {
	var (
		timerC  = make(chan uint64, 1)
		doneC   = make(chan runResult, 1)
		stopped = make(chan struct{})
		timer   Timer
		cancelC = s.token.Done()
		ctxDone = ctx.Done()
		events  = s.opts.Notifier.Events()
		errs    = s.opts.Notifier.Errors()
		seq     int
		changes []string
		started time.Time
		rep     Report
	)
	defer close(stopped)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	s.state()

	for {
		var ev Event
		select {
		case <-cancelC:
			cancelC = nil
			ev = Event{Kind: EvCancel}
		case <-ctxDone:
			ctxDone = nil
			ev = Event{Kind: EvCancel}
		case path, ok := <-events:
			if !ok {
				events = nil
				ev = Event{Kind: EvCancel}
				break
			}
			if s.ignored[cleanPath(path)] {
				continue
			}
			ev = Event{Kind: EvChange, Path: path}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if s.opts.OnFailure != nil {
				s.opts.OnFailure(Report{Err: err})
			}
			continue
		case gen := <-timerC:
			ev = Event{Kind: EvTimer, Gen: gen}
		case r := <-doneC:
			ev = Event{Kind: EvDone, Err: r.err}
			if r.err == nil {
				s.last = r.out
			}
			rep = Report{Seq: seq, Changes: changes, Output: r.out, Err: r.err, Elapsed: s.opts.Clock.Now().Sub(started)}
		}

		before := s.m.State()
		for _, act := range s.m.Step(s.opts.Clock.Now(), ev) {
			switch act.Kind {
			case ActArm:
				if timer != nil {
					timer.Stop()
				}
				gen := act.Gen
				d := act.Deadline.Sub(s.opts.Clock.Now())
				timer = s.opts.Clock.AfterFunc(max(d, 0), func() {
					select {
					case timerC <- gen:
					case <-stopped:
					}
				})
			case ActRun:
				seq++
				changes = act.Changes
				started = s.opts.Clock.Now()
				go func(changes []string) {
					out, err := s.opts.Run(context.WithoutCancel(ctx), changes)
					doneC <- runResult{out: out, err: err}
				}(changes)
			case ActPublish:
				if s.opts.OnSuccess != nil {
					s.opts.OnSuccess(rep)
				}
			case ActFail:
				if s.opts.OnState != nil {
					s.opts.OnState(Failed)
				}
				if s.opts.OnFailure != nil {
					s.opts.OnFailure(rep)
				}
			case ActStop:
				s.state()
				return nil
			}
		}
		if s.m.State() != before {
			s.state()
		}
	}
}

func (s *Session) state() {
	if s.opts.OnState != nil {
		s.opts.OnState(s.m.State())
	}
}
