package autoopen

import (
	"bytes"
	"fmt"
	"io"
)

// ReadFile reads the whole of name, decompressing it if its suffix is
// registered.
func (o *Opener) ReadFile(name string) ([]byte, error) {
	f, err := o.Open(name, "rb", nil)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile writes data to name, compressing it if its suffix is registered.
// The file is created or truncated.
func (o *Opener) WriteFile(name string, data []byte) error {
	f, err := o.Open(name, "wb", nil)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// ReadFile is (*Opener).ReadFile on the host filesystem.
func ReadFile(name string) ([]byte, error) {
	return defaultOpener.ReadFile(name)
}

// WriteFile is (*Opener).WriteFile on the host filesystem.
func WriteFile(name string, data []byte) error {
	return defaultOpener.WriteFile(name, data)
}

// CompressBytes compresses data with the default registry's handler for
// suffix (".gz", ".zst", ...) at the given level.
func CompressBytes(data []byte, suffix string, level int) ([]byte, error) {
	h, err := handlerFor(suffix)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := h.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytes decompresses data with the default registry's handler
// for suffix.
func DecompressBytes(data []byte, suffix string) ([]byte, error) {
	h, err := handlerFor(suffix)
	if err != nil {
		return nil, err
	}

	r, err := h.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func handlerFor(suffix string) (*Handler, error) {
	h, err := DefaultRegistry.Find("data" + suffix)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("autoopen: no handler registered for suffix %q", suffix)
	}
	return h, nil
}
