// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package fs defines the filesystem provider used by the bash facade.
// Implementations live in the lfs (afero) and s3fs (Amazon S3) packages.
package fs

import (
	"context"
	"io"
)

type FileSystem interface {
	Join(name ...string) string
	IsNotExist(err error) bool
	Stat(ctx context.Context, name string) (FileInfo, error)
	ReadDir(ctx context.Context, name string) ([]DirectoryEntry, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create creates the named file, truncating it if it already exists.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	// Append opens the named file for appending, creating it if it does not exist.
	Append(ctx context.Context, name string) (io.WriteCloser, error)
	MkdirAll(ctx context.Context, name string) error
	// Remove removes a file or an empty directory.
	Remove(ctx context.Context, name string) error
	RemoveAll(ctx context.Context, name string) error
	Rename(ctx context.Context, oldname string, newname string) error
}
