package autoopen

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"
	"time"
)

func TestMemFSOpenFlags(t *testing.T) {
	mfs := NewMemFS()

	if _, err := mfs.OpenFile("missing", os.O_RDONLY, 0); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}

	f, err := mfs.OpenFile("/a.txt", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	if _, err := f.Read(buf); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected ErrPermission reading a write-only handle, got %v", err)
	}
	f.Close()

	if _, err := mfs.OpenFile("a.txt", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644); !errors.Is(err, fs.ErrExist) {
		t.Errorf("Expected ErrExist, got %v", err)
	}

	f, err = mfs.OpenFile("a.txt", os.O_RDONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected ErrPermission writing a read-only handle, got %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected %q, got %q", "hello", data)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("Expected ErrClosed on second close, got %v", err)
	}
}

func TestMemFSAppendAndTruncate(t *testing.T) {
	mfs := NewMemFS()

	for _, s := range []string{"one", "two"} {
		f, err := mfs.OpenFile("log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			t.Fatal(err)
		}
		f.Write([]byte(s))
		f.Close()
	}

	f, err := mfs.OpenFile("log", os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	data, _ := io.ReadAll(f)
	if string(data) != "onetwo" {
		t.Errorf("Expected %q, got %q", "onetwo", data)
	}

	if err := f.Truncate(3); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	data, _ = io.ReadAll(f)
	if string(data) != "one" {
		t.Errorf("Expected %q after truncate, got %q", "one", data)
	}

	f2, err := mfs.OpenFile("log", os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		t.Fatal(err)
	}
	f2.Close()
	if info, _ := mfs.Stat("log"); info.Size() != 0 {
		t.Errorf("Expected O_TRUNC to empty the file, size is %d", info.Size())
	}
}

func TestMemFSMetadata(t *testing.T) {
	mfs := NewMemFS().(*memFS)

	for _, name := range []string{"dir/b", "dir/a", "top"} {
		f, err := mfs.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	entries, err := mfs.ReadDir("dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name() != "a" || entries[1].Name() != "b" {
		t.Errorf("Expected [a b], got %v", entries)
	}

	if err := mfs.Rename("top", "dir/c"); err != nil {
		t.Fatal(err)
	}
	if _, err := mfs.Stat("top"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected top to be gone, got %v", err)
	}

	if err := mfs.Chmod("dir/c", 0600); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := mfs.Chtimes("dir/c", mtime, mtime); err != nil {
		t.Fatal(err)
	}
	info, err := mfs.Stat("dir/c")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode() != 0600 || !info.ModTime().Equal(mtime) || info.Name() != "c" {
		t.Errorf("Unexpected file info: %s %v %v", info.Name(), info.Mode(), info.ModTime())
	}

	if err := mfs.Remove("dir/c"); err != nil {
		t.Fatal(err)
	}
	if err := mfs.Remove("dir/c"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
	if err := mfs.Chown("dir/c", 0, 0); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}
