// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"context"
	"sync"

	"github.com/deptofdefense/bashfs/pkg/log"
)

var (
	defaultMutex = &sync.RWMutex{}
	defaultShell = New()
)

// Default returns the shell used by the package-level functions.
func Default() *Shell {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultShell
}

// SetDefault replaces the shell used by the package-level functions.
func SetDefault(s *Shell) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultShell = s
}

// SetLogger replaces the logger of the default shell, keeping its providers.
func SetLogger(logger log.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultShell = &Shell{
		fs:     defaultShell.fs,
		proc:   defaultShell.proc,
		logger: logger,
	}
}

// Mkdir creates path recursively and returns true if it was newly created.
func Mkdir(path string) bool {
	return Default().Mkdir(context.Background(), path).OK()
}

// Rm removes a file and returns true if it existed and was removed.
func Rm(path string) bool {
	return Default().Rm(context.Background(), path).OK()
}

// Rmdir removes an empty directory.  It returns true if the directory was
// removed or did not exist.
func Rmdir(path string) bool {
	return Default().Rmdir(context.Background(), path).OK()
}

// RmR removes a directory recursively.  It returns true if the directory was
// removed or did not exist.
func RmR(path string) bool {
	return Default().RmR(context.Background(), path).OK()
}

// PathExists returns true if path exists.
func PathExists(path string) bool {
	return Default().PathExists(context.Background(), path)
}

// DirectoryIsEmpty returns true if path is a directory with no entries.
func DirectoryIsEmpty(path string) bool {
	return Default().DirectoryIsEmpty(context.Background(), path).OK()
}

// Mv renames oldpath to newpath and returns true on success.
func Mv(oldpath string, newpath string) bool {
	return Default().Mv(context.Background(), oldpath, newpath).OK()
}

// CreateFile creates or truncates an empty file.
func CreateFile(path string) bool {
	return Default().CreateFile(context.Background(), path).OK()
}

// CreateFileBytes creates or truncates a file holding b.
func CreateFileBytes(path string, b []byte) bool {
	return Default().CreateFileBytes(context.Background(), path, b).OK()
}

// WriteFile creates or truncates a file holding text.
func WriteFile(path string, text string) bool {
	return Default().WriteFile(context.Background(), path, text).OK()
}

// WriteFileAppend appends text to a file, creating it if absent.
func WriteFileAppend(path string, text string) bool {
	return Default().WriteFileAppend(context.Background(), path, text).OK()
}

// ReadFile returns the contents of a file, or an empty string if it cannot
// be read.
func ReadFile(path string) string {
	content, _ := Default().ReadFile(context.Background(), path)
	return content
}

// Cd changes the working directory of the process.
func Cd(path string) bool {
	return Default().Cd(context.Background(), path).OK()
}

// RunCommand runs program and returns its exit code.  The boolean is false
// when no exit code was produced.
func RunCommand(program string, args ...string) (int, bool) {
	exitCode, _ := Default().RunCommand(context.Background(), program, args...)
	return exitCode.Code, exitCode.Present
}
