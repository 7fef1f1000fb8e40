// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"context"
	"errors"

	"github.com/deptofdefense/bashfs/pkg/proc"
)

// Cd changes the working directory of the current process.
func (s *Shell) Cd(ctx context.Context, path string) Outcome {
	if err := s.proc.Chdir(path); err != nil {
		s.logError("Error changing directory", "cd", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Changed directory", "cd", pathFields(path))
	return outcome(Done)
}

// RunCommand runs program with args and blocks until it exits.  A non-zero
// exit code is still Done; the code is absent only when the program could not
// be started or was terminated without one.
func (s *Shell) RunCommand(ctx context.Context, program string, args ...string) (ExitCode, Outcome) {
	fields := map[string]interface{}{
		"program": program,
		"args":    args,
	}
	code, err := s.proc.Run(ctx, program, args)
	if err != nil {
		if errors.Is(err, proc.ErrNoExitCode) {
			s.logError("Command terminated without exit code", "run_command", err, fields)
		} else {
			s.logError("Error running command", "run_command", err, fields)
		}
		return ExitCode{}, failed(err)
	}
	fields["exit_code"] = code
	s.logInfo("Command exited", "run_command", fields)
	return ExitCode{Code: code, Present: true}, outcome(Done)
}
