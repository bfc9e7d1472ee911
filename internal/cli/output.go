package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Exit codes.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Failed expectations or invalid scripts
	ExitCommandError = 2 // Command error (bad flags, unreadable config, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// theme holds the report styles.
type theme struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Muted lipgloss.Style
	Label lipgloss.Style
}

func newTheme() theme {
	return theme{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		Fail:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e")),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
		Label: lipgloss.NewStyle().PaddingLeft(2),
	}
}

func (t theme) mark(ok bool) string {
	if ok {
		return t.Pass.Render("✓")
	}
	return t.Fail.Render("✗")
}
