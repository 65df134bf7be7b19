package autoopen

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// normalizePath cleans name and strips leading separators so absolute and
// relative names refer to the same entry.
func normalizePath(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, string(filepath.Separator))
	if name == "" {
		name = "."
	}
	return name
}

// memFS is a flat in-memory filesystem. Directories are implicit.
type memFS struct {
	files map[string]*memNode
	mu    sync.RWMutex
}

// NewMemFS returns an empty in-memory filesystem, useful as Config.FS in
// tests and for buffering compressed data without touching disk.
func NewMemFS() absfs.Filer {
	return &memFS{
		files: make(map[string]*memNode),
	}
}

// memNode is the shared content of a file; every open handle points at it.
type memNode struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
	mu      sync.Mutex
}

// memFile is one open handle.
type memFile struct {
	name   string
	node   *memNode
	flag   int
	pos    int64
	closed bool
	mu     sync.Mutex
}

func (mfs *memFS) Open(name string) (absfs.File, error) {
	return mfs.OpenFile(name, os.O_RDONLY, 0)
}

func (mfs *memFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	key := normalizePath(name)
	if key == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	node, exists := mfs.files[key]
	switch {
	case exists && flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	case !exists && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case !exists:
		node = &memNode{mode: perm, modTime: time.Now()}
		mfs.files[key] = node
	}

	if flag&os.O_TRUNC != 0 {
		node.mu.Lock()
		node.data = nil
		node.modTime = time.Now()
		node.mu.Unlock()
	}

	return &memFile{name: name, node: node, flag: flag}, nil
}

func (mfs *memFS) Create(name string) (absfs.File, error) {
	return mfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (mfs *memFS) Mkdir(name string, perm fs.FileMode) error {
	return nil
}

func (mfs *memFS) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	key := normalizePath(name)
	if _, exists := mfs.files[key]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(mfs.files, key)
	return nil
}

func (mfs *memFS) Rename(oldpath, newpath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	oldKey, newKey := normalizePath(oldpath), normalizePath(newpath)
	node, exists := mfs.files[oldKey]
	if !exists {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	mfs.files[newKey] = node
	delete(mfs.files, oldKey)
	return nil
}

func (mfs *memFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	node, exists := mfs.files[normalizePath(name)]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return node.info(filepath.Base(name)), nil
}

func (mfs *memFS) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	dir := normalizePath(name)
	var entries []fs.DirEntry
	for key, node := range mfs.files {
		if filepath.Dir(key) == dir {
			entries = append(entries, fs.FileInfoToDirEntry(node.info(filepath.Base(key))))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (mfs *memFS) Chmod(name string, mode os.FileMode) error {
	return mfs.update("chmod", name, func(n *memNode) { n.mode = mode })
}

func (mfs *memFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return mfs.update("chtimes", name, func(n *memNode) { n.modTime = mtime })
}

// Chown only checks that name exists.
func (mfs *memFS) Chown(name string, uid, gid int) error {
	return mfs.update("chown", name, func(*memNode) {})
}

func (mfs *memFS) update(op, name string, fn func(*memNode)) error {
	mfs.mu.RLock()
	node, exists := mfs.files[normalizePath(name)]
	mfs.mu.RUnlock()

	if !exists {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	node.mu.Lock()
	fn(node)
	node.mu.Unlock()
	return nil
}

func (n *memNode) info(name string) *memFileInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	return &memFileInfo{
		name:    name,
		size:    int64(len(n.data)),
		mode:    n.mode,
		modTime: n.modTime,
	}
}

func (mf *memFile) readable() bool {
	return mf.flag&(os.O_WRONLY|os.O_RDWR) != os.O_WRONLY
}

func (mf *memFile) writable() bool {
	return mf.flag&(os.O_WRONLY|os.O_RDWR) != 0
}

func (mf *memFile) Read(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	n, err = mf.readAt(p, mf.pos, "read")
	mf.pos += int64(n)
	return n, err
}

func (mf *memFile) ReadAt(b []byte, off int64) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	n, err = mf.readAt(b, off, "readat")
	if err == nil && n < len(b) {
		err = io.EOF
	}
	return n, err
}

func (mf *memFile) readAt(p []byte, off int64, op string) (int, error) {
	if mf.closed {
		return 0, fs.ErrClosed
	}
	if !mf.readable() {
		return 0, &fs.PathError{Op: op, Path: mf.name, Err: fs.ErrPermission}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: op, Path: mf.name, Err: fs.ErrInvalid}
	}

	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()

	if off >= int64(len(mf.node.data)) {
		return 0, io.EOF
	}
	return copy(p, mf.node.data[off:]), nil
}

func (mf *memFile) Write(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.flag&os.O_APPEND != 0 {
		mf.node.mu.Lock()
		mf.pos = int64(len(mf.node.data))
		mf.node.mu.Unlock()
	}
	n, err = mf.writeAt(p, mf.pos, "write")
	mf.pos += int64(n)
	return n, err
}

func (mf *memFile) WriteAt(b []byte, off int64) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	return mf.writeAt(b, off, "writeat")
}

func (mf *memFile) writeAt(p []byte, off int64, op string) (int, error) {
	if mf.closed {
		return 0, fs.ErrClosed
	}
	if !mf.writable() {
		return 0, &fs.PathError{Op: op, Path: mf.name, Err: fs.ErrPermission}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: op, Path: mf.name, Err: fs.ErrInvalid}
	}

	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()

	if end := off + int64(len(p)); end > int64(len(mf.node.data)) {
		grown := make([]byte, end)
		copy(grown, mf.node.data)
		mf.node.data = grown
	}
	n := copy(mf.node.data[off:], p)
	mf.node.modTime = time.Now()
	return n, nil
}

func (mf *memFile) WriteString(s string) (n int, err error) {
	return mf.Write([]byte(s))
}

func (mf *memFile) Close() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return fs.ErrClosed
	}
	mf.closed = true
	return nil
}

func (mf *memFile) Seek(offset int64, whence int) (int64, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = mf.pos + offset
	case io.SeekEnd:
		mf.node.mu.Lock()
		pos = int64(len(mf.node.data)) + offset
		mf.node.mu.Unlock()
	default:
		return 0, errors.New("invalid whence")
	}
	if pos < 0 {
		return 0, errors.New("negative position")
	}

	mf.pos = pos
	return pos, nil
}

func (mf *memFile) Truncate(size int64) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return fs.ErrClosed
	}
	if size < 0 {
		return &fs.PathError{Op: "truncate", Path: mf.name, Err: fs.ErrInvalid}
	}

	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()

	resized := make([]byte, size)
	copy(resized, mf.node.data)
	mf.node.data = resized
	mf.node.modTime = time.Now()
	return nil
}

func (mf *memFile) Stat() (fs.FileInfo, error) {
	return mf.node.info(filepath.Base(mf.name)), nil
}

func (mf *memFile) Sync() error {
	return nil
}

func (mf *memFile) Name() string {
	return mf.name
}

// memFS has no directory handles.
func (mf *memFile) Readdir(n int) ([]os.FileInfo, error) {
	return nil, os.ErrInvalid
}

func (mf *memFile) Readdirnames(n int) ([]string, error) {
	return nil, os.ErrInvalid
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memFileInfo) Sys() interface{}   { return nil }
