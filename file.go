package autoopen

import (
	"io"
	"io/fs"
	"sync"
)

// File is the handle returned by Open. For plain files in binary mode it is
// the filesystem's own file; otherwise it is a stream that decompresses on
// Read, compresses on Write, and releases every layer on Close.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Name() string
}

// stream stacks a reader and/or writer over a file and owns the closers of
// every layer, outermost first.
type stream struct {
	opener  *Opener
	name    string
	handler *Handler

	r       io.Reader
	w       io.Writer
	closers []io.Closer

	bytesRead    int64
	bytesWritten int64
	closed       bool
	mu           sync.Mutex
}

// Name returns the name the file was opened with.
func (s *stream) Name() string {
	return s.name
}

// Read reads uncompressed, decoded data.
func (s *stream) Read(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fs.ErrClosed
	}
	if s.r == nil {
		return 0, ErrNotReadable
	}

	n, err = s.r.Read(p)
	s.bytesRead += int64(n)
	return n, err
}

// Write writes data through the encoder and compressor.
func (s *stream) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fs.ErrClosed
	}
	if s.w == nil {
		return 0, ErrNotWritable
	}

	n, err = s.w.Write(p)
	s.bytesWritten += int64(n)
	return n, err
}

// Close flushes and closes every layer, innermost file last, and returns the
// first error. Closing twice is a no-op.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	if s.opener != nil {
		s.opener.addBytes(&s.opener.stats.BytesRead, s.bytesRead)
		s.opener.addBytes(&s.opener.stats.BytesWritten, s.bytesWritten)
	}
	return err
}

// HandlerOf returns the compression handler behind f, or nil if f reads and
// writes its bytes unchanged.
func HandlerOf(f File) *Handler {
	if s, ok := f.(*stream); ok {
		return s.handler
	}
	return nil
}

// stdio adapts the process streams to a File that Close leaves open.
type stdio struct {
	name string
	r    io.Reader
	w    io.Writer
}

func (s *stdio) Name() string { return s.name }

func (s *stdio) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, ErrNotReadable
	}
	return s.r.Read(p)
}

func (s *stdio) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotWritable
	}
	return s.w.Write(p)
}

func (s *stdio) Close() error { return nil }
