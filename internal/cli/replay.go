package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/gesture"
	"github.com/phanxgames/gesture/internal/logging"
	"github.com/phanxgames/gesture/scene"
)

// ReplayOptions holds options for the replay command.
type ReplayOptions struct {
	*RootOptions
	Parallel int
	Watch    bool
}

// ScriptResult is the outcome of replaying one script file.
type ScriptResult struct {
	Path         string              `json:"path"`
	Name         string              `json:"name,omitempty"`
	Passed       bool                `json:"passed"`
	Events       int                 `json:"events"`
	Elapsed      string              `json:"elapsed,omitempty"`
	Expectations []ExpectationResult `json:"expectations"`
	Error        string              `json:"error,omitempty"`
}

// ExpectationResult mirrors one expect step.
type ExpectationResult struct {
	Step   int    `json:"step"`
	Label  string `json:"label,omitempty"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ReplayReport aggregates a replay run.
type ReplayReport struct {
	Scripts []ScriptResult `json:"scripts"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <script|dir>...",
		Short: "Replay gesture scripts and check their expectations",
		Long: `Replay runs each script against a fresh headless scene, one scene per
script, in parallel. Directories are expanded to the *.json files they hold.
The command exits with code 1 when any expectation fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 0, "max scripts replayed at once (default from config)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "replay again whenever a script or the config file changes")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, args []string) error {
	ctx, m, err := opts.setup(cmd)
	if err != nil {
		return err
	}

	paths, err := collectScripts(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect scripts", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, "no scripts found")
	}

	cfg := m.Get()
	parallel := cfg.Replay.Parallel
	if opts.Parallel > 0 {
		parallel = opts.Parallel
	}

	report, err := replayAll(ctx, cfg.Arena, paths, parallel)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay interrupted", err)
	}
	if err := writeReport(cmd.OutOrStdout(), opts.Format, report); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if opts.Watch {
		return watchScripts(ctx, cmd.OutOrStdout(), opts, m, args, parallel)
	}
	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d script(s) failed", report.Failed, len(report.Scripts)))
	}
	return nil
}

// collectScripts expands directories to their *.json files, sorted, and
// drops duplicate paths.
func collectScripts(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, filepath.Clean(arg))
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.json"))
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	return slices.Compact(paths), nil
}

// replayAll replays every script with at most parallel scripts in flight.
// Script errors are recorded on their result; only cancellation aborts.
func replayAll(ctx context.Context, cfg gesture.Config, paths []string, parallel int) (*ReplayReport, error) {
	results := make([]ScriptResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = replayFile(gctx, cfg, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ReplayReport{Scripts: results}
	for _, r := range results {
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// replayFile loads, builds and plays a single script.
func replayFile(ctx context.Context, cfg gesture.Config, path string) ScriptResult {
	res := ScriptResult{Path: path, Expectations: []ExpectationResult{}}
	log := logging.FromContext(ctx).With().Str("script", path).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	sc, err := scene.LoadScript(data)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Name = sc.Name

	s, r, err := sc.Build(log.WithContext(ctx), cfg)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	var mu sync.Mutex
	s.OnGesture(func(scene.GestureContext) {
		mu.Lock()
		res.Events++
		mu.Unlock()
	})
	if err := s.Play(r); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Elapsed = s.Now().String()

	for _, e := range r.Results() {
		res.Expectations = append(res.Expectations, ExpectationResult(e))
	}
	res.Passed = !r.Failed()
	log.Debug().Bool("passed", res.Passed).Int("events", res.Events).Msg("script replayed")
	return res
}

func writeReport(w io.Writer, format string, report *ReplayReport) error {
	if format == "json" {
		status := "ok"
		if report.Failed > 0 {
			status = "failed"
		}
		return writeJSON(w, Response{Status: status, Data: report})
	}
	_, err := io.WriteString(w, renderReport(report))
	return err
}

func renderReport(report *ReplayReport) string {
	t := newTheme()
	var b strings.Builder

	b.WriteString(t.Title.Render(fmt.Sprintf("Replayed %d script(s)", len(report.Scripts))))
	b.WriteString("\n")
	for _, s := range report.Scripts {
		name := s.Name
		if name == "" {
			name = filepath.Base(s.Path)
		}
		fmt.Fprintf(&b, "%s %s %s\n", t.mark(s.Passed), name,
			t.Muted.Render(fmt.Sprintf("(%s, %d events, %s)", s.Path, s.Events, s.Elapsed)))
		if s.Error != "" {
			b.WriteString(t.Label.Render(t.Fail.Render("error: ")+s.Error) + "\n")
		}
		for _, e := range s.Expectations {
			label := e.Label
			if label == "" {
				label = fmt.Sprintf("step %d", e.Step)
			}
			line := t.mark(e.Passed) + " " + label
			if !e.Passed {
				line += " " + t.Muted.Render(e.Detail)
			}
			b.WriteString(t.Label.Render(line) + "\n")
		}
	}

	summary := fmt.Sprintf("%d passed, %d failed", report.Passed, report.Failed)
	if report.Failed > 0 {
		b.WriteString(t.Fail.Render(summary))
	} else {
		b.WriteString(t.Pass.Render(summary))
	}
	b.WriteString("\n")
	return b.String()
}
