// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"bytes"
	"context"
)

// ObjectWriter buffers writes in memory and puts the object on Close.
type ObjectWriter struct {
	ctx    context.Context
	s3fs   *S3FileSystem
	key    string
	buf    *bytes.Buffer
	closed bool
}

func (w *ObjectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	return w.buf.Write(p)
}

func (w *ObjectWriter) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	return w.s3fs.putObject(w.ctx, w.key, w.buf.Bytes())
}

func NewObjectWriter(ctx context.Context, s3fs *S3FileSystem, key string, existing []byte) *ObjectWriter {
	return &ObjectWriter{
		ctx:  ctx,
		s3fs: s3fs,
		key:  key,
		buf:  bytes.NewBuffer(existing),
	}
}
