// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"context"
)

// Mkdir creates path and any missing parents.  It reports Exists without
// touching the filesystem when path is already present.
func (s *Shell) Mkdir(ctx context.Context, path string) Outcome {
	if s.PathExists(ctx, path) {
		return outcome(Exists)
	}
	if err := s.fs.MkdirAll(ctx, path); err != nil {
		s.logError("Error creating directory", "mkdir", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Created directory", "mkdir", pathFields(path))
	return outcome(Done)
}

// Rmdir removes the empty directory at path.  An absent path is Satisfied.
func (s *Shell) Rmdir(ctx context.Context, path string) Outcome {
	fi, err := s.stat(ctx, path)
	if err != nil {
		s.logError("Error removing directory", "rmdir", err, pathFields(path))
		return failed(err)
	}
	if fi == nil {
		s.logInfo("Directory does not exist", "rmdir", pathFields(path))
		return outcome(Satisfied)
	}
	if !fi.IsDir() {
		s.logError("Error removing directory", "rmdir", ErrNotDirectory, pathFields(path))
		return outcome(NotDirectory)
	}
	if err := s.fs.Remove(ctx, path); err != nil {
		s.logError("Error removing directory", "rmdir", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Removed directory", "rmdir", pathFields(path))
	return outcome(Done)
}

// RmR removes the directory at path and everything below it.  An absent
// path is Satisfied and a file is refused with NotDirectory.
func (s *Shell) RmR(ctx context.Context, path string) Outcome {
	fi, err := s.stat(ctx, path)
	if err != nil {
		s.logError("Error removing directory", "rm_r", err, pathFields(path))
		return failed(err)
	}
	if fi == nil {
		s.logInfo("Directory does not exist", "rm_r", pathFields(path))
		return outcome(Satisfied)
	}
	if !fi.IsDir() {
		s.logError("Error removing directory", "rm_r", ErrNotDirectory, pathFields(path))
		return outcome(NotDirectory)
	}
	if err := s.fs.RemoveAll(ctx, path); err != nil {
		s.logError("Error removing directory", "rm_r", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Removed directory", "rm_r", pathFields(path))
	return outcome(Done)
}

// DirectoryIsEmpty reports Satisfied when path is a directory with no
// entries.  Otherwise it reports NotFound, NotDirectory, NotEmpty or Failed.
func (s *Shell) DirectoryIsEmpty(ctx context.Context, path string) Outcome {
	fi, err := s.stat(ctx, path)
	if err != nil {
		s.logError("Error checking directory", "directory_is_empty", err, pathFields(path))
		return failed(err)
	}
	if fi == nil {
		s.logInfo("Path does not exist", "directory_is_empty", pathFields(path))
		return outcome(NotFound)
	}
	if !fi.IsDir() {
		s.logInfo("Path is not a directory", "directory_is_empty", pathFields(path))
		return outcome(NotDirectory)
	}
	directoryEntries, err := s.fs.ReadDir(ctx, path)
	if err != nil {
		s.logError("Error reading directory", "directory_is_empty", err, pathFields(path))
		return failed(err)
	}
	if len(directoryEntries) > 0 {
		return outcome(NotEmpty)
	}
	return outcome(Satisfied)
}
