// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package proc provides the process operations used by the bash facade:
// changing the working directory and running external programs.
package proc

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ErrNoExitCode is returned by Run when the child terminated without an exit
// code, for example when it was killed by a signal.
var ErrNoExitCode = errors.New("proc: process terminated without an exit code")

type Provider interface {
	Chdir(dir string) error
	// Run starts program with args and waits for it to exit.  A child that
	// exits normally yields its exit code and a nil error, even if the code
	// is non-zero.
	Run(ctx context.Context, program string, args []string) (int, error)
}

// OSProvider runs programs with os/exec.  Nil streams are connected to the
// null device.
type OSProvider struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (p *OSProvider) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (p *OSProvider) Run(ctx context.Context, program string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdin = p.Stdin
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	err := cmd.Run()
	if err == nil {
		return cmd.ProcessState.ExitCode(), nil
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		if code := exitError.ExitCode(); code >= 0 {
			return code, nil
		}
		return -1, ErrNoExitCode
	}
	return -1, err
}

// NewOSProvider returns a provider whose children inherit the standard
// streams of the current process.
func NewOSProvider() *OSProvider {
	return &OSProvider{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

var _ Provider = (*OSProvider)(nil)
