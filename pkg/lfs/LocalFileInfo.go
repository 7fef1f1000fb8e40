// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"os"
	"time"
)

// LocalFileInfo is returned by Stat and, for each child, by ReadDir.
type LocalFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *LocalFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

func (fi *LocalFileInfo) Name() string {
	return fi.name
}

func (fi *LocalFileInfo) Mode() os.FileMode {
	return fi.mode
}

func (fi *LocalFileInfo) ModTime() time.Time {
	return fi.modTime
}

func (fi *LocalFileInfo) Size() int64 {
	return fi.size
}

func NewLocalFileInfo(fi os.FileInfo) *LocalFileInfo {
	return &LocalFileInfo{
		name:    fi.Name(),
		size:    fi.Size(),
		mode:    fi.Mode(),
		modTime: fi.ModTime(),
	}
}
