package watch

import (
	"sort"
	"time"
)

// State of a watch session.
type State uint8

const (
	Idle State = iota
	Scheduled
	Running
	Failed
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// EventKind enumerates machine inputs.
type EventKind uint8

const (
	EvChange EventKind = iota + 1 // a watched file changed
	EvTimer                       // debounce timer fired
	EvDone                        // pipeline run finished
	EvCancel                      // cancellation requested
)

type Event struct {
	Kind EventKind
	Path string // EvChange
	Gen  uint64 // EvTimer: generation of the timer that fired
	Err  error  // EvDone: nil on success
}

// ActionKind enumerates what the session must do after a step.
type ActionKind uint8

const (
	ActArm     ActionKind = iota + 1 // (re)arm the debounce timer
	ActRun                           // start one pipeline run
	ActPublish                       // last run succeeded
	ActFail                          // last run failed (state Failed); the machine is Idle again
	ActStop                          // session is over
)

type Action struct {
	Kind     ActionKind
	Deadline time.Time // ActArm
	Gen      uint64    // ActArm
	Changes  []string  // ActRun: sorted changed paths
	Err      error     // ActFail
}

// Machine is the debounce state machine.
type Machine struct {
	Debounce time.Duration

	state      State
	gen        uint64
	deadline   time.Time
	lastChange time.Time
	pending    map[string]struct{}
	dirty      bool // changes arrived while Running
	cancelled  bool // cancel arrived while Running
	runs       int
	failures   int
}

func NewMachine(debounce time.Duration) *Machine {
	return &Machine{Debounce: debounce, pending: make(map[string]struct{})}
}

func (m *Machine) State() State { return m.state }

// Deadline returns the expiry of the armed timer; zero when none is armed.
func (m *Machine) Deadline() time.Time {
	if m.state != Scheduled {
		return time.Time{}
	}
	return m.deadline
}

// Pending returns the changes not yet handed to a run, sorted.
func (m *Machine) Pending() []string { return sortedKeys(m.pending) }

// Runs and Failures count finished runs.
func (m *Machine) Runs() int     { return m.runs }
func (m *Machine) Failures() int { return m.failures }

// Step applies ev at time now and returns the actions to perform in order.
func (m *Machine) Step(now time.Time, ev Event) []Action {
	if m.state == Terminated {
		return nil
	}
	switch ev.Kind {
	case EvCancel:
		if m.state == Running {
			// дождёмся окончания текущего прогона
			m.cancelled = true
			return nil
		}
		m.state = Terminated
		return []Action{{Kind: ActStop}}

	case EvChange:
		m.pending[ev.Path] = struct{}{}
		m.lastChange = now
		if m.state == Running {
			m.dirty = true
			return nil
		}
		return []Action{m.arm(m.lastChange.Add(m.Debounce))}

	case EvTimer:
		if m.state != Scheduled || ev.Gen != m.gen {
			return nil // устаревший таймер
		}
		m.state = Running
		changes := sortedKeys(m.pending)
		clear(m.pending)
		return []Action{{Kind: ActRun, Changes: changes}}

	case EvDone:
		if m.state != Running {
			return nil
		}
		m.runs++
		var out []Action
		// Failed только проходной: после отчёта машина снова Idle
		m.state = Idle
		if ev.Err != nil {
			m.failures++
			out = append(out, Action{Kind: ActFail, Err: ev.Err})
		} else {
			out = append(out, Action{Kind: ActPublish})
		}
		if m.cancelled {
			m.state = Terminated
			return append(out, Action{Kind: ActStop})
		}
		if m.dirty {
			m.dirty = false
			deadline := m.lastChange.Add(m.Debounce)
			if deadline.Before(now) {
				deadline = now
			}
			out = append(out, m.arm(deadline))
		}
		return out
	}
	return nil
}

func (m *Machine) arm(deadline time.Time) Action {
	m.state = Scheduled
	m.gen++
	m.deadline = deadline
	return Action{Kind: ActArm, Deadline: deadline, Gen: m.gen}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
