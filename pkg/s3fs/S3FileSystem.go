// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package s3fs provides a file system backed by an Amazon S3 bucket.
//
// Files are objects.  Directories are key prefixes, and MkdirAll writes an
// empty marker object named after the directory with a trailing slash so that
// empty directories survive.
package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deptofdefense/bashfs/pkg/fs"
)

var (
	ErrInvalidPath       = errors.New("s3fs: invalid path")
	ErrDirectoryNotEmpty = errors.New("s3fs: directory not empty")
	ErrNotDirectory      = errors.New("s3fs: not a directory")
	ErrIsDirectory       = errors.New("s3fs: is a directory")
	ErrClosed            = errors.New("s3fs: file already closed")
)

type S3FileSystem struct {
	bucket             string
	prefix             string
	client             Client
	bucketCreationDate time.Time
}

func pathError(op string, name string, err error) error {
	return &iofs.PathError{Op: op, Path: name, Err: err}
}

// key returns the object key for name.  Names containing ".." elements are
// rejected.
func (s3fs *S3FileSystem) key(op string, name string) (string, error) {
	for _, element := range strings.Split(name, "/") {
		if element == ".." {
			return "", pathError(op, name, ErrInvalidPath)
		}
	}
	k := strings.TrimPrefix(path.Clean("/"+name), "/")
	if len(s3fs.prefix) > 0 {
		return path.Join(s3fs.prefix, k), nil
	}
	return k, nil
}

func (s3fs *S3FileSystem) isRoot(k string) bool {
	return k == s3fs.prefix
}

// dirPrefix returns the prefix shared by every key below k.
func (s3fs *S3FileSystem) dirPrefix(k string) string {
	if len(k) == 0 {
		return ""
	}
	return k + "/"
}

func (s3fs *S3FileSystem) parentKey(k string) string {
	if s3fs.isRoot(k) {
		return k
	}
	if d := path.Dir(k); d != "." {
		return d
	}
	return ""
}

func (s3fs *S3FileSystem) headObject(ctx context.Context, k string) (*S3FileInfo, error) {
	headObjectOutput, err := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, err
	}
	return NewS3FileInfo(
		path.Base(k),
		aws.ToTime(headObjectOutput.LastModified),
		false,
		headObjectOutput.ContentLength,
	), nil
}

// hasChildren returns true if any key, including a directory marker, starts
// with the directory prefix of k.
func (s3fs *S3FileSystem) hasChildren(ctx context.Context, k string) (bool, error) {
	prefix := s3fs.dirPrefix(k)
	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: 1,
	})
	if err != nil {
		return false, fmt.Errorf("error listing objects with prefix %q: %w", prefix, err)
	}
	return len(listObjectsOutput.Contents) > 0 || len(listObjectsOutput.CommonPrefixes) > 0, nil
}

// listKeys returns every key starting with prefix.
func (s3fs *S3FileSystem) listKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	var continuationToken *string
	for {
		listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s3fs.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing objects with prefix %q: %w", prefix, err)
		}
		for _, object := range listObjectsOutput.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
		if !listObjectsOutput.IsTruncated {
			break
		}
		continuationToken = listObjectsOutput.NextContinuationToken
	}
	return keys, nil
}

func (s3fs *S3FileSystem) stat(ctx context.Context, op string, name string, k string) (*S3FileInfo, error) {
	if s3fs.isRoot(k) {
		return NewS3FileInfo("/", s3fs.bucketCreationDate, true, int64(0)), nil
	}
	fi, err := s3fs.headObject(ctx, k)
	if err == nil {
		return fi, nil
	}
	if !isNotExist(err) {
		return nil, pathError(op, name, err)
	}
	ok, err := s3fs.hasChildren(ctx, k)
	if err != nil {
		return nil, pathError(op, name, err)
	}
	if ok {
		return NewS3FileInfo(path.Base(k), s3fs.bucketCreationDate, true, int64(0)), nil
	}
	return nil, pathError(op, name, iofs.ErrNotExist)
}

// checkParent returns an error unless the parent of k is an existing
// directory.
func (s3fs *S3FileSystem) checkParent(ctx context.Context, op string, name string, k string) error {
	if s3fs.isRoot(k) {
		return nil
	}
	fi, err := s3fs.stat(ctx, op, name, s3fs.parentKey(k))
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return pathError(op, name, ErrNotDirectory)
	}
	return nil
}

func (s3fs *S3FileSystem) deleteObject(ctx context.Context, k string) error {
	_, err := s3fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("error deleting object %q: %w", k, err)
	}
	return nil
}

func (s3fs *S3FileSystem) putObject(ctx context.Context, k string, body []byte) error {
	_, err := s3fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(k),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("error putting object %q: %w", k, err)
	}
	return nil
}

// moveObject copies src to dst and then deletes src.
func (s3fs *S3FileSystem) moveObject(ctx context.Context, src string, dst string) error {
	_, err := s3fs.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s3fs.bucket),
		CopySource: aws.String(s3fs.bucket + "/" + src),
		Key:        aws.String(dst),
	})
	if err != nil {
		return fmt.Errorf("error copying object %q to %q: %w", src, dst, err)
	}
	return s3fs.deleteObject(ctx, src)
}

func (s3fs *S3FileSystem) IsNotExist(err error) bool {
	return isNotExist(err)
}

func (s3fs *S3FileSystem) Join(name ...string) string {
	return path.Join(name...)
}

func (s3fs *S3FileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	k, err := s3fs.key("stat", name)
	if err != nil {
		return nil, err
	}
	fi, err := s3fs.stat(ctx, "stat", name, k)
	if err != nil {
		return nil, err
	}
	return fi, nil
}

func (s3fs *S3FileSystem) ReadDir(ctx context.Context, name string) ([]fs.DirectoryEntry, error) {
	k, err := s3fs.key("readdir", name)
	if err != nil {
		return nil, err
	}
	fi, err := s3fs.stat(ctx, "readdir", name, k)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, pathError("readdir", name, ErrNotDirectory)
	}
	prefix := s3fs.dirPrefix(k)
	directoryEntries := []fs.DirectoryEntry{}
	var continuationToken *string
	for {
		listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s3fs.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, pathError("readdir", name, fmt.Errorf("error listing objects with prefix %q: %w", prefix, err))
		}
		for _, commonPrefix := range listObjectsOutput.CommonPrefixes {
			directoryEntries = append(directoryEntries, NewS3FileInfo(
				path.Base(strings.TrimPrefix(aws.ToString(commonPrefix.Prefix), prefix)),
				s3fs.bucketCreationDate,
				true,
				int64(0),
			))
		}
		for _, object := range listObjectsOutput.Contents {
			objectKey := aws.ToString(object.Key)
			// the marker of the directory itself
			if objectKey == prefix {
				continue
			}
			directoryEntries = append(directoryEntries, NewS3FileInfo(
				strings.TrimPrefix(objectKey, prefix),
				aws.ToTime(object.LastModified),
				false,
				object.Size,
			))
		}
		if !listObjectsOutput.IsTruncated {
			break
		}
		continuationToken = listObjectsOutput.NextContinuationToken
	}
	return directoryEntries, nil
}

func (s3fs *S3FileSystem) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	k, err := s3fs.key("open", name)
	if err != nil {
		return nil, err
	}
	if s3fs.isRoot(k) {
		return nil, pathError("open", name, ErrIsDirectory)
	}
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return getObjectOutput.Body, nil
}

// writable returns the key for name after checking that the parent directory
// exists and that name is not a directory.
func (s3fs *S3FileSystem) writable(ctx context.Context, op string, name string) (string, error) {
	k, err := s3fs.key(op, name)
	if err != nil {
		return "", err
	}
	if s3fs.isRoot(k) {
		return "", pathError(op, name, ErrIsDirectory)
	}
	if err := s3fs.checkParent(ctx, op, name, k); err != nil {
		return "", err
	}
	dir, err := s3fs.hasChildren(ctx, k)
	if err != nil {
		return "", pathError(op, name, err)
	}
	if dir {
		return "", pathError(op, name, ErrIsDirectory)
	}
	return k, nil
}

// Create returns a writer that uploads the object when closed.
func (s3fs *S3FileSystem) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	k, err := s3fs.writable(ctx, "create", name)
	if err != nil {
		return nil, err
	}
	return NewObjectWriter(ctx, s3fs, k, nil), nil
}

// Append downloads the current object, if any, and returns a writer that
// uploads the existing content followed by everything written when closed.
func (s3fs *S3FileSystem) Append(ctx context.Context, name string) (io.WriteCloser, error) {
	k, err := s3fs.writable(ctx, "append", name)
	if err != nil {
		return nil, err
	}
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		if isNotExist(err) {
			return NewObjectWriter(ctx, s3fs, k, nil), nil
		}
		return nil, pathError("append", name, err)
	}
	defer getObjectOutput.Body.Close()
	existing, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return nil, pathError("append", name, fmt.Errorf("error reading object %q: %w", k, err))
	}
	return NewObjectWriter(ctx, s3fs, k, existing), nil
}

func (s3fs *S3FileSystem) MkdirAll(ctx context.Context, name string) error {
	k, err := s3fs.key("mkdir", name)
	if err != nil {
		return err
	}
	if s3fs.isRoot(k) {
		return nil
	}
	current := s3fs.prefix
	for _, element := range strings.Split(strings.TrimPrefix(strings.TrimPrefix(k, s3fs.prefix), "/"), "/") {
		current = path.Join(current, element)
		_, err := s3fs.headObject(ctx, current)
		if err == nil {
			return pathError("mkdir", name, ErrNotDirectory)
		}
		if !isNotExist(err) {
			return pathError("mkdir", name, err)
		}
		if err := s3fs.putObject(ctx, current+"/", nil); err != nil {
			return pathError("mkdir", name, err)
		}
	}
	return nil
}

// Remove deletes an object or an empty directory.
func (s3fs *S3FileSystem) Remove(ctx context.Context, name string) error {
	k, err := s3fs.key("remove", name)
	if err != nil {
		return err
	}
	if s3fs.isRoot(k) {
		return pathError("remove", name, ErrInvalidPath)
	}
	fi, err := s3fs.stat(ctx, "remove", name, k)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		if err := s3fs.deleteObject(ctx, k); err != nil {
			return pathError("remove", name, err)
		}
		return nil
	}
	marker := s3fs.dirPrefix(k)
	// The marker sorts before every other key with the same prefix.
	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		Prefix:  aws.String(marker),
		MaxKeys: 2,
	})
	if err != nil {
		return pathError("remove", name, fmt.Errorf("error listing objects with prefix %q: %w", marker, err))
	}
	for _, object := range listObjectsOutput.Contents {
		if aws.ToString(object.Key) != marker {
			return pathError("remove", name, ErrDirectoryNotEmpty)
		}
	}
	if err := s3fs.deleteObject(ctx, marker); err != nil {
		return pathError("remove", name, err)
	}
	return nil
}

// RemoveAll deletes name and every key below it.  It returns nil if name does
// not exist.
func (s3fs *S3FileSystem) RemoveAll(ctx context.Context, name string) error {
	k, err := s3fs.key("removeall", name)
	if err != nil {
		return err
	}
	keys, err := s3fs.listKeys(ctx, s3fs.dirPrefix(k))
	if err != nil {
		return pathError("removeall", name, err)
	}
	for _, objectKey := range keys {
		if err := s3fs.deleteObject(ctx, objectKey); err != nil {
			return pathError("removeall", name, err)
		}
	}
	if s3fs.isRoot(k) {
		return nil
	}
	if _, err := s3fs.headObject(ctx, k); err != nil {
		if isNotExist(err) {
			return nil
		}
		return pathError("removeall", name, err)
	}
	if err := s3fs.deleteObject(ctx, k); err != nil {
		return pathError("removeall", name, err)
	}
	return nil
}

// Rename moves an object, or every key below a directory, with copy and
// delete.  It is not atomic.  Like os.Rename, a file may replace a file and a
// directory may replace an empty directory.
func (s3fs *S3FileSystem) Rename(ctx context.Context, oldname string, newname string) error {
	oldKey, err := s3fs.key("rename", oldname)
	if err != nil {
		return err
	}
	newKey, err := s3fs.key("rename", newname)
	if err != nil {
		return err
	}
	if s3fs.isRoot(oldKey) || s3fs.isRoot(newKey) || oldKey == newKey {
		return pathError("rename", oldname, ErrInvalidPath)
	}
	fi, err := s3fs.stat(ctx, "rename", oldname, oldKey)
	if err != nil {
		return err
	}
	if err := s3fs.checkParent(ctx, "rename", newname, newKey); err != nil {
		return err
	}
	if !fi.IsDir() {
		// an existing file is replaced, an existing directory is not
		isDir, err := s3fs.hasChildren(ctx, newKey)
		if err != nil {
			return pathError("rename", newname, err)
		}
		if isDir {
			return pathError("rename", newname, ErrIsDirectory)
		}
		if err := s3fs.moveObject(ctx, oldKey, newKey); err != nil {
			return pathError("rename", oldname, err)
		}
		return nil
	}
	oldPrefix := s3fs.dirPrefix(oldKey)
	newPrefix := s3fs.dirPrefix(newKey)
	if strings.HasPrefix(newPrefix, oldPrefix) {
		return pathError("rename", newname, ErrInvalidPath)
	}
	if _, err := s3fs.headObject(ctx, newKey); err == nil {
		return pathError("rename", newname, ErrNotDirectory)
	} else if !isNotExist(err) {
		return pathError("rename", newname, err)
	}
	// an empty directory may be replaced, its marker is overwritten
	existing, err := s3fs.listKeys(ctx, newPrefix)
	if err != nil {
		return pathError("rename", newname, err)
	}
	for _, objectKey := range existing {
		if objectKey != newPrefix {
			return pathError("rename", newname, ErrDirectoryNotEmpty)
		}
	}
	keys, err := s3fs.listKeys(ctx, oldPrefix)
	if err != nil {
		return pathError("rename", oldname, err)
	}
	for _, objectKey := range keys {
		if err := s3fs.moveObject(ctx, objectKey, newPrefix+strings.TrimPrefix(objectKey, oldPrefix)); err != nil {
			return pathError("rename", oldname, err)
		}
	}
	return nil
}

// NewS3FileSystem returns a file system rooted at prefix within bucket.
func NewS3FileSystem(bucket string, prefix string, client Client, bucketCreationDate time.Time) *S3FileSystem {
	return &S3FileSystem{
		bucket:             bucket,
		prefix:             strings.Trim(prefix, "/"),
		client:             client,
		bucketCreationDate: bucketCreationDate,
	}
}

var _ fs.FileSystem = (*S3FileSystem)(nil)
