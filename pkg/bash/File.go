// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"context"
	"io"
)

// writeAll writes b to w and closes w.  The first error wins.
func writeAll(w io.WriteCloser, b []byte) error {
	_, err := w.Write(b)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Rm removes the file at path.  Directories are refused with IsDirectory.
func (s *Shell) Rm(ctx context.Context, path string) Outcome {
	fi, err := s.stat(ctx, path)
	if err != nil {
		s.logError("Error removing file", "rm", err, pathFields(path))
		return failed(err)
	}
	if fi == nil {
		s.logInfo("File does not exist", "rm", pathFields(path))
		return outcome(NotFound)
	}
	if fi.IsDir() {
		s.logError("Error removing file", "rm", ErrIsDirectory, pathFields(path))
		return outcome(IsDirectory)
	}
	if err := s.fs.Remove(ctx, path); err != nil {
		s.logError("Error removing file", "rm", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Removed file", "rm", pathFields(path))
	return outcome(Done)
}

// CreateFile creates an empty file at path, truncating any existing file.
// The parent directory must already exist.
func (s *Shell) CreateFile(ctx context.Context, path string) Outcome {
	return s.create(ctx, "create_file", path, nil)
}

// CreateFileBytes creates the file at path and writes b to it.
func (s *Shell) CreateFileBytes(ctx context.Context, path string, b []byte) Outcome {
	return s.create(ctx, "create_file_bytes", path, b)
}

// WriteFile creates the file at path and writes text to it unmodified.
func (s *Shell) WriteFile(ctx context.Context, path string, text string) Outcome {
	return s.create(ctx, "write_file", path, []byte(text))
}

func (s *Shell) create(ctx context.Context, op string, path string, b []byte) Outcome {
	w, err := s.fs.Create(ctx, path)
	if err != nil {
		s.logError("Error creating file", op, err, pathFields(path))
		return failed(err)
	}
	if err := writeAll(w, b); err != nil {
		s.logError("Error writing file", op, err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Wrote file", op, map[string]interface{}{
		"path":  path,
		"bytes": len(b),
	})
	return outcome(Done)
}

// WriteFileAppend appends text to the file at path, creating it if needed.
func (s *Shell) WriteFileAppend(ctx context.Context, path string, text string) Outcome {
	w, err := s.fs.Append(ctx, path)
	if err != nil {
		s.logError("Error opening file", "write_file_append", err, pathFields(path))
		return failed(err)
	}
	if err := writeAll(w, []byte(text)); err != nil {
		s.logError("Error writing file", "write_file_append", err, pathFields(path))
		return failed(err)
	}
	s.logInfo("Appended to file", "write_file_append", map[string]interface{}{
		"path":  path,
		"bytes": len(text),
	})
	return outcome(Done)
}

// ReadFile returns the contents of the file at path.  On failure the content
// is empty and the outcome carries the reason.
func (s *Shell) ReadFile(ctx context.Context, path string) (string, Outcome) {
	r, err := s.fs.Open(ctx, path)
	if err != nil {
		s.logError("Error opening file", "read_file", err, pathFields(path))
		return "", failed(err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		s.logError("Error reading file", "read_file", err, pathFields(path))
		return "", failed(err)
	}
	return string(b), outcome(Done)
}
