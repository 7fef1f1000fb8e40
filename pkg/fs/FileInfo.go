// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"time"
)

// FileInfo describes a file or directory returned by Stat.
type FileInfo interface {
	IsDir() bool
	Name() string
	ModTime() time.Time
	Size() int64
}

// DirectoryEntry describes one direct child returned by ReadDir.
// Listings never include the "." and ".." pseudo entries.
type DirectoryEntry interface {
	Name() string
	IsDir() bool
	ModTime() time.Time
	Size() int64
}
