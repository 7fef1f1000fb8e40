// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package lfs provides filesystem providers backed by afero.
package lfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/deptofdefense/bashfs/pkg/fs"
)

const (
	DirectoryPerm = os.FileMode(0755)
	FilePerm      = os.FileMode(0644)
)

type LocalFileSystem struct {
	fs afero.Fs
}

func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (lfs *LocalFileSystem) Join(name ...string) string {
	return filepath.Join(name...)
}

func (lfs *LocalFileSystem) ReadDir(ctx context.Context, name string) ([]fs.DirectoryEntry, error) {
	readDirOutput, err := afero.ReadDir(lfs.fs, name)
	if err != nil {
		return nil, err
	}
	directoryEntries := make([]fs.DirectoryEntry, 0, len(readDirOutput))
	for _, fi := range readDirOutput {
		directoryEntries = append(directoryEntries, NewLocalFileInfo(fi))
	}
	return directoryEntries, nil
}

func (lfs *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	return NewLocalFileInfo(fi), nil
}

func (lfs *LocalFileSystem) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := lfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (lfs *LocalFileSystem) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	f, err := lfs.fs.Create(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (lfs *LocalFileSystem) Append(ctx context.Context, name string) (io.WriteCloser, error) {
	f, err := lfs.fs.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, FilePerm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (lfs *LocalFileSystem) MkdirAll(ctx context.Context, name string) error {
	return lfs.fs.MkdirAll(name, DirectoryPerm)
}

func (lfs *LocalFileSystem) Remove(ctx context.Context, name string) error {
	return lfs.fs.Remove(name)
}

func (lfs *LocalFileSystem) RemoveAll(ctx context.Context, name string) error {
	return lfs.fs.RemoveAll(name)
}

func (lfs *LocalFileSystem) Rename(ctx context.Context, oldname string, newname string) error {
	return lfs.fs.Rename(oldname, newname)
}

// NewLocalFileSystem returns a file system rooted at rootPath.
// Names are resolved relative to the root and cannot escape it.
func NewLocalFileSystem(rootPath string) *LocalFileSystem {
	return &LocalFileSystem{
		fs: afero.NewBasePathFs(afero.NewOsFs(), rootPath),
	}
}

// NewOsFileSystem returns a file system that resolves names the way the
// operating system does, relative to the current working directory.
func NewOsFileSystem() *LocalFileSystem {
	return &LocalFileSystem{
		fs: afero.NewOsFs(),
	}
}

// NewMemFileSystem returns a volatile in-memory file system.
func NewMemFileSystem() *LocalFileSystem {
	return &LocalFileSystem{
		fs: afero.NewMemMapFs(),
	}
}

var _ fs.FileSystem = (*LocalFileSystem)(nil)
