package utils

import "fmt"

// ErrorKind represents the different ways a job can fail
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindInputNotFound
	ErrorKindInvalidInput
	ErrorKindAccessDenied
	ErrorKindHTTP
	ErrorKindParseAnomaly
	ErrorKindPersistence
	ErrorKindInternal
)

// String returns the snake_case name of the kind, used in logs and tool output
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "ok"
	case ErrorKindInputNotFound:
		return "input_not_found"
	case ErrorKindInvalidInput:
		return "invalid_input"
	case ErrorKindAccessDenied:
		return "access_denied"
	case ErrorKindHTTP:
		return "http_error"
	case ErrorKindParseAnomaly:
		return "parse_anomaly"
	case ErrorKindPersistence:
		return "persistence_error"
	case ErrorKindInternal:
		return "internal_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of a job's entry operation.
// The process boundary turns it into an exit code; nothing else inspects it.
type Result struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Ok returns a successful result carrying a human readable summary
func Ok(format string, args ...interface{}) Result {
	return Result{Kind: ErrorKindNone, Message: fmt.Sprintf(format, args...)}
}

// Err returns a failed result of the given kind
func Err(kind ErrorKind, err error) Result {
	msg := kind.String()
	if err != nil {
		msg = err.Error()
	}
	return Result{Kind: kind, Message: msg, Err: err}
}

// IsOk reports whether the job succeeded
func (r Result) IsOk() bool {
	return r.Kind == ErrorKindNone
}

// ExitCode maps the result to a process exit status
func (r Result) ExitCode() int {
	if r.IsOk() {
		return 0
	}
	return 1
}

func (r Result) Error() string {
	if r.IsOk() {
		return ""
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (r Result) Unwrap() error {
	return r.Err
}
