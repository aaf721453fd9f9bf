package domain

import (
	"encoding/json"
	"time"
)

// ErrorKind is the canonical failure taxonomy every sandbox backend is mapped onto
type ErrorKind string

const (
	ErrorKindNone             ErrorKind = ""
	ErrorKindTransport        ErrorKind = "TRANSPORT_ERROR"
	ErrorKindCompile          ErrorKind = "COMPILE_ERROR"
	ErrorKindRuntime          ErrorKind = "RUNTIME_ERROR"
	ErrorKindWallTimeExceeded ErrorKind = "WALL_TIME_EXCEEDED"
	ErrorKindUnknownStatus    ErrorKind = "UNKNOWN_STATUS"
	ErrorKindSchemaSetup      ErrorKind = "SCHEMA_SETUP_ERROR"
	ErrorKindQueryExecution   ErrorKind = "QUERY_EXECUTION_ERROR"
	ErrorKindConfiguration    ErrorKind = "CONFIGURATION_ERROR"
)

// Language is the language of a coding assignment
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// ExecutionRequest is built once per test case and never mutated afterwards
type ExecutionRequest struct {
	Language   Language
	SourceCode string
	Stdin      string
	Timeout    time.Duration
}

// NewExecutionRequest creates an execution request for one test case
func NewExecutionRequest(language Language, source, stdin string, timeout time.Duration) ExecutionRequest {
	return ExecutionRequest{
		Language:   language,
		SourceCode: source,
		Stdin:      stdin,
		Timeout:    timeout,
	}
}

// TimeoutSeconds returns the timeout rounded up to whole seconds, never below one
func (r ExecutionRequest) TimeoutSeconds() int {
	secs := int((r.Timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// ExecutionResult is the backend independent result of running a program once
type ExecutionResult struct {
	Succeeded      bool
	Stdout         string
	ErrorMessage   string
	Kind           ErrorKind
	ElapsedSeconds float64
}

// Succeeded builds a successful execution result
func Succeeded(stdout string, elapsed float64) ExecutionResult {
	return ExecutionResult{Succeeded: true, Stdout: stdout, ElapsedSeconds: elapsed}
}

// Failed builds a failed execution result. Partial stdout is kept for diagnostics.
func Failed(kind ErrorKind, msg, stdout string, elapsed float64) ExecutionResult {
	return ExecutionResult{
		Succeeded:      false,
		Stdout:         stdout,
		ErrorMessage:   msg,
		Kind:           kind,
		ElapsedSeconds: elapsed,
	}
}

func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Succeeded      bool      `json:"succeeded"`
		Stdout         string    `json:"stdout"`
		ErrorMessage   *string   `json:"error_message"`
		Kind           ErrorKind `json:"error_kind,omitempty"`
		ElapsedSeconds float64   `json:"elapsed_seconds"`
	}
	w := wire{
		Succeeded:      r.Succeeded,
		Stdout:         r.Stdout,
		Kind:           r.Kind,
		ElapsedSeconds: r.ElapsedSeconds,
	}
	if !r.Succeeded {
		msg := r.ErrorMessage
		w.ErrorMessage = &msg
	}
	return json.Marshal(w)
}
