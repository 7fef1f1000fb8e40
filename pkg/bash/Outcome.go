// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"errors"
)

// Errors returned by Outcome.Reason for the precondition kinds.
var (
	ErrExists       = errors.New("bash: path already exists")
	ErrNotFound     = errors.New("bash: path does not exist")
	ErrNotDirectory = errors.New("bash: path is not a directory")
	ErrIsDirectory  = errors.New("bash: path is a directory")
	ErrNotEmpty     = errors.New("bash: directory is not empty")
)

// Kind classifies why an operation did or did not change state.
type Kind int

const (
	// Done means the operation was performed.
	Done Kind = iota
	// Satisfied means there was nothing to do because the target was
	// already in the requested state.
	Satisfied
	// Exists means the target was already present.
	Exists
	// NotFound means the source path was missing.
	NotFound
	// NotDirectory means a directory was required.
	NotDirectory
	// IsDirectory means a file was required.
	IsDirectory
	// NotEmpty means the directory has entries.
	NotEmpty
	// Failed means the provider call itself returned an error.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Done:
		return "done"
	case Satisfied:
		return "satisfied"
	case Exists:
		return "exists"
	case NotFound:
		return "not found"
	case NotDirectory:
		return "not a directory"
	case IsDirectory:
		return "is a directory"
	case NotEmpty:
		return "not empty"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of a Shell operation.  Err is only set when Kind is
// Failed.
type Outcome struct {
	Kind Kind
	Err  error
}

// OK reports whether the target ended up in the requested state.
func (o Outcome) OK() bool {
	return o.Kind == Done || o.Kind == Satisfied
}

// Reason returns the reason the operation did not succeed, or nil.
func (o Outcome) Reason() error {
	switch o.Kind {
	case Done, Satisfied:
		return nil
	case Exists:
		return ErrExists
	case NotFound:
		return ErrNotFound
	case NotDirectory:
		return ErrNotDirectory
	case IsDirectory:
		return ErrIsDirectory
	case NotEmpty:
		return ErrNotEmpty
	}
	return o.Err
}

func (o Outcome) String() string {
	if o.Kind == Failed && o.Err != nil {
		return o.Kind.String() + ": " + o.Err.Error()
	}
	return o.Kind.String()
}

func outcome(k Kind) Outcome {
	return Outcome{Kind: k}
}

func failed(err error) Outcome {
	return Outcome{Kind: Failed, Err: err}
}

// ExitCode is the exit status of a child process.  Present is false when the
// process could not be started or terminated without a code.
type ExitCode struct {
	Code    int
	Present bool
}
