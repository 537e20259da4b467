package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// Exit codes for CLI commands.
const (
	ExitSuccess          = 0 // Successful execution
	ExitFailure          = 1 // Validation or scenario failure
	ExitCommandError     = 2 // Command error (bad flags, unreadable files, bad config)
	ExitNotFound         = 3 // Contest or catch does not exist
	ExitInvalidDecision  = 4 // Bad status or rejection without reason
	ExitStoreUnavailable = 5 // Database read or append failed
)

// Error codes for CLI responses that do not come from the engine.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeConfig     = "E002" // Configuration could not be loaded
	ErrCodeInvalidArg = "E003" // Malformed argument or flag
	ErrCodeInvalidDoc = "E004" // Fixture or scenario document is invalid
	ErrCodeNotFound   = "E005" // Path not found
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)

	// reported is set once the error was written through an OutputFormatter.
	reported bool
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
// Engine errors map to their dedicated codes; anything else that is not an
// ExitError yields ExitFailure (1).
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if code, ok := engineExitCode(err); ok {
		return code
	}
	return ExitFailure
}

func engineExitCode(err error) (int, bool) {
	switch contest.CodeOf(err) {
	case contest.ErrCodeNotFound:
		return ExitNotFound, true
	case contest.ErrCodeInvalidDecision:
		return ExitInvalidDecision, true
	case contest.ErrCodeStoreUnavailable:
		return ExitStoreUnavailable, true
	}
	return 0, false
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // engine code or "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Render outputs data as a JSON response, or calls text for human-readable
// output.
func (f *OutputFormatter) Render(data interface{}, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns an ExitError carrying
// the matching exit code. Engine errors keep their code (NOT_FOUND, ...);
// other errors are reported with fallbackCode and exit with fallbackExit.
func (f *OutputFormatter) Fail(err error, fallbackCode string, fallbackExit int, details interface{}) error {
	code, exit := fallbackCode, fallbackExit
	if c, ok := engineExitCode(err); ok {
		code, exit = string(contest.CodeOf(err)), c
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exit = exitErr.Code
	}

	_ = f.Error(code, err.Error(), details)
	return &ExitError{Code: exit, Message: err.Error(), reported: true}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
