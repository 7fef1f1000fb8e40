// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package bash exposes Bash-like filesystem and process operations.
//
// A Shell performs each operation with a single call to its filesystem or
// process provider and reports an Outcome.  The package-level functions
// (Mkdir, Rm, ReadFile, ...) run against the default shell and collapse the
// outcome into a boolean, a string, or an optional exit code.
package bash

import (
	"github.com/deptofdefense/bashfs/pkg/fs"
	"github.com/deptofdefense/bashfs/pkg/lfs"
	"github.com/deptofdefense/bashfs/pkg/log"
	"github.com/deptofdefense/bashfs/pkg/proc"
)

// Values of the level field on every log record.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Shell runs operations against a filesystem provider and a process provider.
type Shell struct {
	fs     fs.FileSystem
	proc   proc.Provider
	logger log.Logger
}

// Option configures a Shell.
type Option func(s *Shell)

// WithFileSystem sets the filesystem provider.
func WithFileSystem(filesystem fs.FileSystem) Option {
	return func(s *Shell) {
		s.fs = filesystem
	}
}

// WithProcess sets the process provider.
func WithProcess(p proc.Provider) Option {
	return func(s *Shell) {
		s.proc = p
	}
}

// WithLogger sets the sink for log records.
func WithLogger(logger log.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// New returns a shell over the operating system.  Records are dropped unless
// a logger is given.
func New(options ...Option) *Shell {
	s := &Shell{
		fs:     lfs.NewOsFileSystem(),
		proc:   proc.NewOSProvider(),
		logger: log.NopLogger{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// FileSystem returns the provider the shell operates on.
func (s *Shell) FileSystem() fs.FileSystem {
	return s.fs
}

func (s *Shell) logInfo(msg string, op string, fields map[string]interface{}) {
	s.log(LevelInfo, msg, op, fields)
}

func (s *Shell) logError(msg string, op string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()
	s.log(LevelError, msg, op, fields)
}

func (s *Shell) log(level string, msg string, op string, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["level"] = level
	fields["op"] = op
	_ = s.logger.Log(msg, fields)
}
