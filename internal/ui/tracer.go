package ui

import (
	"rsbundle/internal/trace"
)

// StageTracer forwards the start of every pipeline stage to the dashboard.
// It drops events instead of blocking the pipeline.
type StageTracer struct {
	out chan<- Event
}

func NewStageTracer(out chan<- Event) *StageTracer {
	return &StageTracer{out: out}
}

func (t *StageTracer) Emit(ev *trace.Event) {
	if ev.Kind != trace.KindSpanBegin || ev.Scope != trace.ScopeStage {
		return
	}
	select {
	case t.out <- Event{Kind: EventStage, Stage: ev.Name}:
	default:
	}
}

func (t *StageTracer) Flush() error       { return nil }
func (t *StageTracer) Close() error       { return nil }
func (t *StageTracer) Level() trace.Level { return trace.LevelStage }
func (t *StageTracer) Enabled() bool      { return true }
