package autoopen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
)

func newExtendedOpener() (*Opener, *memFS) {
	reg := DefaultRegistry.Clone()
	for _, h := range ExtendedHandlers() {
		reg.Register(h)
	}
	base := NewMemFS().(*memFS)
	return New(&Config{FS: base, Registry: reg}), base
}

func TestExtendedRoundTrip(t *testing.T) {
	data := testPayload()

	tests := []struct {
		name  string
		level int
		want  *Handler
	}{
		{"data.lz4", 0, LZ4Handler},
		{"data.lz4", 5, LZ4Handler},
		{"data.br", 0, BrotliHandler},
		{"data.br", 9, BrotliHandler},
		{"data.sz", 0, SnappyHandler},
		{"data.snappy", 0, SnappyHandler},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-level%d", tt.name, tt.level), func(t *testing.T) {
			o, base := newExtendedOpener()

			f, err := o.Open(tt.name, "wb", &Options{Level: tt.level})
			if err != nil {
				t.Fatalf("Failed to open for writing: %v", err)
			}
			if HandlerOf(f) != tt.want {
				t.Errorf("Expected handler %v, got %v", tt.want, HandlerOf(f))
			}
			if _, err := f.Write(data); err != nil {
				t.Fatalf("Failed to write: %v", err)
			}
			if err := f.Close(); err != nil {
				t.Fatalf("Failed to close: %v", err)
			}

			info, err := base.Stat(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() >= int64(len(data)) {
				t.Errorf("Expected compressed size below %d, got %d", len(data), info.Size())
			}

			f, err = o.Open(tt.name, "rb", nil)
			if err != nil {
				t.Fatalf("Failed to open for reading: %v", err)
			}
			defer f.Close()
			got, err := io.ReadAll(f)
			if err != nil {
				t.Fatalf("Failed to read: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("Decompressed data does not match original")
			}
		})
	}
}

func TestExtendedInvalidLevel(t *testing.T) {
	o, base := newExtendedOpener()

	for _, name := range []string{"x.lz4", "x.br"} {
		_, err := o.Open(name, "wb", &Options{Level: 42})
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("%s: expected ErrInvalidLevel, got %v", name, err)
		}
	}

	// The file was created before the codec rejected the level.
	if _, err := base.Stat("x.lz4"); err != nil {
		t.Errorf("Expected x.lz4 to exist: %v", err)
	}
}

func TestExtendedNotRegisteredByDefault(t *testing.T) {
	o, base := newMemOpener()

	f, err := o.Open("x.lz4", "wb", nil)
	if err != nil {
		t.Fatal(err)
	}
	if HandlerOf(f) != nil {
		t.Errorf("Expected a plain file, got handler %v", HandlerOf(f))
	}
	if _, err := f.Write([]byte("raw")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := o.ReadFile("x.lz4")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "raw" {
		t.Errorf("Expected %q, got %q", "raw", data)
	}
	if info, _ := base.Stat("x.lz4"); info.Size() != 3 {
		t.Errorf("Expected 3 bytes on disk, got %d", info.Size())
	}
}

func TestExtendedSniff(t *testing.T) {
	o, base := newExtendedOpener()
	for _, name := range []string{"s.lz4", "s.sz"} {
		if err := o.WriteFile(name, []byte("sniff me")); err != nil {
			t.Fatal(err)
		}
	}

	for name, want := range map[string]*Handler{"s.lz4": LZ4Handler, "s.sz": SnappyHandler} {
		f, err := base.Open(name)
		if err != nil {
			t.Fatal(err)
		}
		h, err := o.Registry().Detect(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if h != want {
			t.Errorf("%s: expected %v, got %v", name, want, h)
		}
	}
}
