package diag

import "rsbundle/internal/source"

type reportKey struct {
	code Code
	span source.Span
	msg  string
}

// DedupReporter forwards each (code, span, message) once. A library file
// reached from several `use` sites would otherwise warn once per site.
// Severity is not part of the key: the first report wins.
type DedupReporter struct {
	next  Reporter
	count map[reportKey]int
}

// NewDedupReporter wraps next; a nil next only counts.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, count: map[reportKey]int{}}
}

// Report implements Reporter.
func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := reportKey{code: code, span: primary, msg: msg}
	r.count[key]++
	if r.count[key] > 1 || r.next == nil {
		return
	}
	r.next.Report(code, sev, primary, msg, notes)
}

// Suppressed returns how many reports were dropped as repeats.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.count {
		n += c - 1
	}
	return n
}
