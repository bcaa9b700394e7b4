package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTopicsRemaining indicates every topic of the bag was excluded.
	ErrNoTopicsRemaining = errors.New("no topics remaining after exclusion")
	// ErrMissingCache indicates a filter was requested before any bag was inspected.
	ErrMissingCache = errors.New("no bag inspected yet, run extract first")
	// ErrInvalidExtension indicates the input bag name does not end in ".bag".
	ErrInvalidExtension = errors.New("input bag must have a .bag extension")
	// ErrRunNotFound indicates a history record does not exist.
	ErrRunNotFound = errors.New("run not found")
)

// ExternalToolError reports a failed invocation of the external bag tool.
type ExternalToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " ")))
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
