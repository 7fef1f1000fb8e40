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
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deptofdefense/bashfs/pkg/fs"
	"github.com/deptofdefense/bashfs/pkg/lfs"
	"github.com/deptofdefense/bashfs/pkg/proc"
)

type record struct {
	msg    string
	fields map[string]interface{}
}

type testLogger struct {
	mutex   sync.Mutex
	records []record
}

func (l *testLogger) Log(msg string, fields map[string]interface{}) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.records = append(l.records, record{msg: msg, fields: fields})
	return nil
}

func (l *testLogger) levels(op string) []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	levels := []string{}
	for _, r := range l.records {
		if r.fields["op"] == op {
			levels = append(levels, r.fields["level"].(string))
		}
	}
	return levels
}

func newTestShell(t *testing.T) (*Shell, *testLogger, string) {
	root := t.TempDir()
	logger := &testLogger{}
	s := New(
		WithFileSystem(lfs.NewLocalFileSystem(root)),
		WithProcess(&proc.OSProvider{}),
		WithLogger(logger),
	)
	return s, logger, root
}

func TestMkdir(t *testing.T) {
	ctx := context.Background()
	s, logger, root := newTestShell(t)

	o := s.Mkdir(ctx, "a/b/c")
	assert.Equal(t, Done, o.Kind)
	assert.True(t, o.OK())
	assert.DirExists(t, filepath.Join(root, "a", "b", "c"))
	assert.True(t, s.PathExists(ctx, "a/b/c"))
	assert.Contains(t, logger.levels("mkdir"), LevelInfo)

	o = s.Mkdir(ctx, "a/b/c")
	assert.Equal(t, Exists, o.Kind)
	assert.False(t, o.OK())
	assert.ErrorIs(t, o.Reason(), ErrExists)
}

func TestMkdirUnderFile(t *testing.T) {
	ctx := context.Background()
	s, logger, _ := newTestShell(t)

	require.True(t, s.CreateFile(ctx, "file").OK())
	o := s.Mkdir(ctx, "file/child")
	assert.Equal(t, Failed, o.Kind)
	assert.Error(t, o.Reason())
	assert.Contains(t, logger.levels("mkdir"), LevelError)
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	o := s.Rm(ctx, "missing")
	assert.Equal(t, NotFound, o.Kind)
	assert.False(t, o.OK())

	require.True(t, s.CreateFile(ctx, "file").OK())
	assert.Equal(t, Done, s.Rm(ctx, "file").Kind)
	assert.False(t, s.PathExists(ctx, "file"))

	require.True(t, s.Mkdir(ctx, "dir").OK())
	assert.Equal(t, IsDirectory, s.Rm(ctx, "dir").Kind)
	assert.True(t, s.PathExists(ctx, "dir"))
}

func TestRmdir(t *testing.T) {
	ctx := context.Background()
	s, logger, _ := newTestShell(t)

	assert.Equal(t, Satisfied, s.Rmdir(ctx, "missing").Kind)
	assert.True(t, s.Rmdir(ctx, "missing").OK())

	require.True(t, s.Mkdir(ctx, "empty").OK())
	assert.Equal(t, Done, s.Rmdir(ctx, "empty").Kind)
	assert.False(t, s.PathExists(ctx, "empty"))

	require.True(t, s.Mkdir(ctx, "full").OK())
	require.True(t, s.CreateFile(ctx, "full/a_file.txt").OK())
	o := s.Rmdir(ctx, "full")
	assert.Equal(t, Failed, o.Kind)
	assert.False(t, o.OK())
	assert.True(t, s.PathExists(ctx, "full/a_file.txt"))
	assert.Contains(t, logger.levels("rmdir"), LevelError)

	assert.Equal(t, NotDirectory, s.Rmdir(ctx, "full/a_file.txt").Kind)
}

func TestRmR(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	assert.Equal(t, Satisfied, s.RmR(ctx, "missing").Kind)

	paths := []string{"tree/a", "tree/a/b", "tree/c"}
	for _, p := range paths {
		require.True(t, s.Mkdir(ctx, p).OK())
	}
	files := []string{"tree/file", "tree/a/file", "tree/a/b/file", "tree/c/file"}
	for _, p := range files {
		require.True(t, s.WriteFile(ctx, p, "x").OK())
	}

	o := s.RmR(ctx, "tree/file")
	assert.Equal(t, NotDirectory, o.Kind)
	assert.ErrorIs(t, o.Reason(), ErrNotDirectory)
	assert.True(t, s.PathExists(ctx, "tree/file"))

	assert.Equal(t, Done, s.RmR(ctx, "tree").Kind)
	assert.False(t, s.PathExists(ctx, "tree"))
	for _, p := range append(paths, files...) {
		assert.False(t, s.PathExists(ctx, p), p)
	}
}

func TestPathExists(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	assert.False(t, s.PathExists(ctx, "a_very_1234_unlikely_9876_filename"))
	require.True(t, s.CreateFile(ctx, "testfile").OK())
	assert.True(t, s.PathExists(ctx, "testfile"))
}

func TestDirectoryIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	require.True(t, s.Mkdir(ctx, "empty_directory").OK())
	require.True(t, s.Mkdir(ctx, "full_directory").OK())
	require.True(t, s.CreateFile(ctx, "full_directory/a_file.txt").OK())
	require.True(t, s.CreateFile(ctx, "full_directory/another_file.txt").OK())

	assert.Equal(t, Satisfied, s.DirectoryIsEmpty(ctx, "empty_directory").Kind)
	assert.Equal(t, NotEmpty, s.DirectoryIsEmpty(ctx, "full_directory").Kind)
	assert.Equal(t, NotDirectory, s.DirectoryIsEmpty(ctx, "full_directory/a_file.txt").Kind)
	assert.Equal(t, NotFound, s.DirectoryIsEmpty(ctx, "missing").Kind)

	require.True(t, s.CreateFile(ctx, "empty_directory/x").OK())
	assert.False(t, s.DirectoryIsEmpty(ctx, "empty_directory").OK())
}

func TestMv(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	require.True(t, s.Mkdir(ctx, "directory_one").OK())
	require.True(t, s.Mkdir(ctx, "directory_two").OK())
	require.True(t, s.WriteFile(ctx, "directory_one/the_file", "contents").OK())
	before, o := s.ReadFile(ctx, "directory_one/the_file")
	require.True(t, o.OK())

	assert.Equal(t, Done, s.Mv(ctx, "directory_one/the_file", "directory_two/the_file").Kind)
	assert.False(t, s.PathExists(ctx, "directory_one/the_file"))
	assert.True(t, s.PathExists(ctx, "directory_two/the_file"))
	after, o := s.ReadFile(ctx, "directory_two/the_file")
	require.True(t, o.OK())
	assert.Equal(t, before, after)

	assert.Equal(t, NotFound, s.Mv(ctx, "directory_one/the_file", "directory_two/other").Kind)
	assert.Equal(t, Failed, s.Mv(ctx, "directory_two/the_file", "missing/the_file").Kind)
}

func TestCreateFile(t *testing.T) {
	ctx := context.Background()
	s, _, root := newTestShell(t)

	require.True(t, s.WriteFile(ctx, "the_file", "old").OK())
	assert.Equal(t, Done, s.CreateFile(ctx, "the_file").Kind)
	content, o := s.ReadFile(ctx, "the_file")
	assert.Equal(t, Done, o.Kind)
	assert.Equal(t, "", content)

	info, err := os.Stat(filepath.Join(root, "the_file"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())

	assert.Equal(t, Failed, s.CreateFile(ctx, "missing/the_file").Kind)
}

func TestCreateFileBytes(t *testing.T) {
	ctx := context.Background()
	s, _, root := newTestShell(t)

	binary := []byte{0x00, 0x01, 0xfe, 0xff, '\n'}
	assert.True(t, s.CreateFileBytes(ctx, "a_binary_file", binary).OK())
	b, err := os.ReadFile(filepath.Join(root, "a_binary_file"))
	require.NoError(t, err)
	assert.Equal(t, binary, b)
}

func TestWriteAndReadFile(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestShell(t)

	assert.True(t, s.WriteFile(ctx, "text.txt", "Hello, world!").OK())
	content, o := s.ReadFile(ctx, "text.txt")
	assert.True(t, o.OK())
	assert.Equal(t, "Hello, world!", content)

	assert.True(t, s.WriteFile(ctx, "text.txt", "A").OK())
	assert.True(t, s.WriteFileAppend(ctx, "text.txt", "B").OK())
	content, _ = s.ReadFile(ctx, "text.txt")
	assert.Equal(t, "AB", content)

	assert.True(t, s.WriteFileAppend(ctx, "new.txt", "Hi Again!").OK())
	content, _ = s.ReadFile(ctx, "new.txt")
	assert.Equal(t, "Hi Again!", content)
}

func TestReadFileMissing(t *testing.T) {
	ctx := context.Background()
	s, logger, _ := newTestShell(t)

	content, o := s.ReadFile(ctx, "missing.txt")
	assert.Equal(t, "", content)
	assert.Equal(t, Failed, o.Kind)
	assert.True(t, errors.Is(o.Reason(), os.ErrNotExist))
	assert.Equal(t, []string{LevelError}, logger.levels("read_file"))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func (failingWriter) Close() error {
	return nil
}

type failingWriteFileSystem struct {
	fs.FileSystem
}

func (failingWriteFileSystem) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return failingWriter{}, nil
}

func (failingWriteFileSystem) Append(ctx context.Context, name string) (io.WriteCloser, error) {
	return failingWriter{}, nil
}

func TestWriteFailureIsReported(t *testing.T) {
	ctx := context.Background()
	logger := &testLogger{}
	s := New(WithFileSystem(failingWriteFileSystem{lfs.NewMemFileSystem()}), WithLogger(logger))

	o := s.WriteFile(ctx, "file", "data")
	assert.Equal(t, Failed, o.Kind)
	assert.EqualError(t, o.Reason(), "disk full")

	o = s.WriteFileAppend(ctx, "file", "data")
	assert.Equal(t, Failed, o.Kind)
	assert.Equal(t, []string{LevelError}, logger.levels("write_file_append"))
}

func TestMemFileSystem(t *testing.T) {
	ctx := context.Background()
	s := New(WithFileSystem(lfs.NewMemFileSystem()))

	assert.True(t, s.Mkdir(ctx, "/d").OK())
	assert.True(t, s.DirectoryIsEmpty(ctx, "/d").OK())
	assert.True(t, s.WriteFile(ctx, "/d/x", "A").OK())
	assert.True(t, s.WriteFileAppend(ctx, "/d/x", "B").OK())
	content, _ := s.ReadFile(ctx, "/d/x")
	assert.Equal(t, "AB", content)
	assert.False(t, s.DirectoryIsEmpty(ctx, "/d").OK())
	assert.True(t, s.RmR(ctx, "/d").OK())
	assert.False(t, s.PathExists(ctx, "/d/x"))
}

func TestOutcome(t *testing.T) {
	assert.Nil(t, outcome(Done).Reason())
	assert.Nil(t, outcome(Satisfied).Reason())
	assert.ErrorIs(t, outcome(NotFound).Reason(), ErrNotFound)
	assert.ErrorIs(t, outcome(NotEmpty).Reason(), ErrNotEmpty)
	assert.Equal(t, "failed: boom", failed(errors.New("boom")).String())
	assert.Equal(t, "satisfied", outcome(Satisfied).String())
}
