package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // derivation failure (simulation error, timeout)
	ExitCommandError = 2 // command error (bad flags, unreadable config)
)

// ExitError carries a specific exit code out of a command.
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands. Text
// rendering goes through an English message printer so counts and
// energies read naturally.
type OutputFormatter struct {
	Format  string // "text" | "json"
	Writer  io.Writer
	printer *message.Printer
}

// NewOutputFormatter creates a formatter writing to w.
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:  format,
		Writer:  w,
		printer: message.NewPrinter(language.English),
	}
}

// JSON reports whether the formatter is in JSON mode.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// EmitJSON writes data as indented JSON.
func (f *OutputFormatter) EmitJSON(data any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Printf renders text output with locale-aware number formatting.
func (f *OutputFormatter) Printf(format string, args ...any) {
	f.printer.Fprintf(f.Writer, format, args...)
}
