package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/gesture/scene"
)

// ValidationResult is the outcome of validating one script file.
type ValidationResult struct {
	Path   string   `json:"path"`
	Name   string   `json:"name,omitempty"`
	Valid  bool     `json:"valid"`
	Nodes  int      `json:"nodes"`
	Steps  int      `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script|dir>...",
		Short: "Check gesture scripts without replaying them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, args []string) error {
	paths, err := collectScripts(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect scripts", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, "no scripts found")
	}

	results := make([]ValidationResult, 0, len(paths))
	invalid := 0
	for _, p := range paths {
		r := validateFile(p)
		if !r.Valid {
			invalid++
		}
		results = append(results, r)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		status := "ok"
		if invalid > 0 {
			status = "invalid"
		}
		if err := writeJSON(out, Response{Status: status, Data: results}); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	} else {
		writeValidation(out, results)
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d script(s) invalid", invalid, len(results)))
	}
	return nil
}

func validateFile(path string) ValidationResult {
	res := ValidationResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Errors = []string{err.Error()}
		return res
	}
	sc, err := scene.LoadScript(data)
	if err != nil {
		res.Errors = []string{err.Error()}
		return res
	}
	res.Name = sc.Name
	res.Nodes = len(sc.Nodes)
	res.Steps = len(sc.Steps)
	if err := sc.Validate(); err != nil {
		res.Errors = splitErrors(err)
		return res
	}
	res.Valid = true
	return res
}

// splitErrors flattens a joined error into one message per line.
func splitErrors(err error) []string {
	var msgs []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	return msgs
}

func writeValidation(w io.Writer, results []ValidationResult) {
	t := newTheme()
	for _, r := range results {
		fmt.Fprintf(w, "%s %s %s\n", t.mark(r.Valid), r.Path,
			t.Muted.Render(fmt.Sprintf("(%d nodes, %d steps)", r.Nodes, r.Steps)))
		for _, e := range r.Errors {
			fmt.Fprintln(w, t.Label.Render(e))
		}
	}
}
