// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package bash

import (
	"context"

	"github.com/deptofdefense/bashfs/pkg/fs"
)

func pathFields(path string) map[string]interface{} {
	return map[string]interface{}{"path": path}
}

// stat returns the file info for path, or nil if it does not exist.
func (s *Shell) stat(ctx context.Context, path string) (fs.FileInfo, error) {
	fi, err := s.fs.Stat(ctx, path)
	if err != nil {
		if s.fs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return fi, nil
}

// PathExists reports whether path names a file, directory, or other node.
// A stat error other than not-exist is logged and counts as absent.
func (s *Shell) PathExists(ctx context.Context, path string) bool {
	fi, err := s.stat(ctx, path)
	if err != nil {
		s.logError("Error checking path", "path_exists", err, pathFields(path))
		return false
	}
	if fi == nil {
		s.logInfo("Path does not exist", "path_exists", pathFields(path))
		return false
	}
	s.logInfo("Path exists", "path_exists", pathFields(path))
	return true
}

// Mv renames oldpath to newpath.  Moving across devices is left to the
// provider and may fail.
func (s *Shell) Mv(ctx context.Context, oldpath string, newpath string) Outcome {
	fields := map[string]interface{}{"source": oldpath, "target": newpath}
	fi, err := s.stat(ctx, oldpath)
	if err != nil {
		s.logError("Error moving path", "mv", err, fields)
		return failed(err)
	}
	if fi == nil {
		s.logInfo("Source does not exist", "mv", fields)
		return outcome(NotFound)
	}
	if err := s.fs.Rename(ctx, oldpath, newpath); err != nil {
		s.logError("Error moving path", "mv", err, fields)
		return failed(err)
	}
	s.logInfo("Moved path", "mv", fields)
	return outcome(Done)
}
