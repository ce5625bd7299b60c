package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsbundle/internal/bundle"
	"rsbundle/internal/cache"
	"rsbundle/internal/config"
	"rsbundle/internal/observ"
	"rsbundle/internal/project"
	"rsbundle/internal/trace"
	"rsbundle/internal/ui"
	"rsbundle/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] [path]",
		Short: "Re-bundle whenever a source file changes",
		Long: `Watch bundles the package once, then re-bundles after every burst of
changes under the source directory. A failed run is reported and the
session keeps watching. Interrupt to stop; a run in progress finishes first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
	addPipelineFlags(cmd.Flags())
	cmd.Flags().String("src-dir", "", "directory to watch (default <root>/src)")
	cmd.Flags().Duration("debounce", config.DefaultDebounce, "quiet period before a re-bundle")
	cmd.Flags().String("ui", "auto", "dashboard (auto|on|off)")
	return cmd
}

// watchRunner bundles on behalf of a watch session and routes reports
// either to the dashboard or to plain stderr lines.
type watchRunner struct {
	cmd     *cobra.Command
	root    string
	cfg     config.Config
	bundler *bundle.Bundler
	timer   *observ.Timer
	printer diagPrinter
	errOut  io.Writer

	mu     sync.Mutex
	events chan ui.Event // nil without the dashboard
	uiDone chan struct{}
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, root)
	if err != nil {
		return err
	}
	uiValue, _ := cmd.Flags().GetString("ui")
	uiMode, err := readToggle("ui", uiValue)
	if err != nil {
		return err
	}
	printer, err := newDiagPrinter(cmd)
	if err != nil {
		return err
	}
	timer, err := newTimer(cmd)
	if err != nil {
		return err
	}
	tokens, err := cache.NewTokenCache(cache.DefaultTokenEntries)
	if err != nil {
		return err
	}
	disk, err := openCache(cfg)
	if err != nil {
		return err
	}

	w := &watchRunner{
		cmd:  cmd,
		root: root,
		cfg:  cfg,
		bundler: bundle.New(bundle.Options{
			Loader: project.Loader{Bin: cfg.Bin},
			Tokens: tokens,
			Cache:  disk,
			Timer:  timer,
		}),
		timer:   timer,
		printer: printer,
		errOut:  cmd.ErrOrStderr(),
	}

	dir := cfg.WatchDir(root)
	notifier, err := watch.NewFSNotifier(dir, filepath.Join(root, project.ManifestName))
	if err != nil {
		return err
	}
	defer notifier.Close()

	var ignore []string
	if cfg.Output != "" && cfg.Output != "-" {
		ignore = append(ignore, cfg.Output)
	}
	sess, err := watch.NewSession(watch.Options{
		Debounce:  cfg.Watch.Debounce.Duration,
		Notifier:  notifier,
		Ignore:    ignore,
		Run:       w.run,
		OnSuccess: w.success,
		OnFailure: w.failure,
		OnState:   w.state,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !uiMode.resolve(os.Stdout) || cfg.Output == "" || cfg.Output == "-" {
		// без файла вывода бандл идёт в stdout, дашборд бы его затёр
		w.logf("watching %s (debounce %s)\n", displayDir(root, dir), cfg.Watch.Debounce.Duration)
		w.initial(ctx)
		return sess.Run(ctx)
	}

	w.events = make(chan ui.Event, 64)
	w.uiDone = make(chan struct{})
	base := trace.FromContext(ctx)
	level := max(base.Level(), trace.LevelStage)
	ctx = trace.WithTracer(ctx, trace.NewMultiTracer(level, base, ui.NewStageTracer(w.events)))

	var uiErr error
	go func() {
		defer close(w.uiDone)
		title := fmt.Sprintf("rsbundle watch %s", displayDir(root, dir))
		_, uiErr = tea.NewProgram(ui.NewWatchModel(title, w.events), tea.WithOutput(os.Stdout)).Run()
		sess.Cancel()
	}()

	w.initial(ctx)
	runErr := sess.Run(ctx)
	w.mu.Lock()
	close(w.events)
	w.events = nil
	w.mu.Unlock()
	<-w.uiDone
	if uiErr != nil {
		return uiErr
	}
	return runErr
}

// initial bundles once before the first change arrives.
func (w *watchRunner) initial(ctx context.Context) {
	start := time.Now()
	out, err := w.run(ctx, nil)
	rep := watch.Report{Output: out, Err: err, Elapsed: time.Since(start)}
	if err != nil {
		w.runFailed(rep)
		return
	}
	w.success(rep)
}

func (w *watchRunner) run(ctx context.Context, _ []string) ([]byte, error) {
	w.timer.Reset()
	res, err := w.bundler.Bundle(ctx, w.root, w.cfg.Bundle())
	if err != nil {
		return nil, err
	}
	if !w.dashboard() {
		_ = w.printer.print(res.Warnings, res.FileSet)
	}
	if err := emitOutput(w.cmd.OutOrStdout(), w.cfg.Output, res.Output); err != nil {
		return nil, err
	}
	return res.Output, nil
}

func (w *watchRunner) success(rep watch.Report) {
	if w.send(ui.Event{Kind: ui.EventRun, Report: rep}) {
		return
	}
	w.logf("%s %s %d bytes in %.1f ms%s\n",
		color.GreenString("ok"), runLabel(rep), len(rep.Output),
		float64(rep.Elapsed)/float64(time.Millisecond), changeNote(w.root, rep.Changes))
	_ = printTimings(w.cmd, w.errOut, w.timer)
}

// failure receives failed runs and, with Seq 0, notifier errors.
func (w *watchRunner) failure(rep watch.Report) {
	if rep.Seq == 0 {
		if !w.send(ui.Event{Kind: ui.EventRun, Report: rep}) {
			w.logf("%s watcher: %v\n", errorLabel(), rep.Err)
		}
		return
	}
	w.runFailed(rep)
}

func (w *watchRunner) runFailed(rep watch.Report) {
	if w.send(ui.Event{Kind: ui.EventRun, Report: rep}) {
		return
	}
	w.logf("%s %s failed%s\n", errorLabel(), runLabel(rep), changeNote(w.root, rep.Changes))
	if err := w.printer.report(rep.Err); !errors.Is(err, errReported) {
		w.logf("  %v\n", err)
	}
}

func (w *watchRunner) state(s watch.State) {
	w.send(ui.Event{Kind: ui.EventState, State: s})
}

func (w *watchRunner) dashboard() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.events != nil
}

// send delivers ev to the dashboard. It reports false when there is none.
func (w *watchRunner) send(ev ui.Event) bool {
	w.mu.Lock()
	events := w.events
	w.mu.Unlock()
	if events == nil {
		return false
	}
	select {
	case events <- ev:
	case <-w.uiDone:
	}
	return true
}

func (w *watchRunner) logf(format string, args ...any) {
	fmt.Fprintf(w.errOut, format, args...)
}

func runLabel(rep watch.Report) string {
	if rep.Seq == 0 {
		return "initial bundle"
	}
	return fmt.Sprintf("run #%d", rep.Seq)
}

func changeNote(root string, changes []string) string {
	if len(changes) == 0 {
		return ""
	}
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		names = append(names, displayDir(root, c))
	}
	const shown = 3
	if len(names) > shown {
		names = append(names[:shown], fmt.Sprintf("+%d", len(changes)-shown))
	}
	return " (" + strings.Join(names, ", ") + ")"
}

func displayDir(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
