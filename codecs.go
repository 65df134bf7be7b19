package autoopen

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Built-in handlers. Zstandard lives in zstd.go so it can be left out of a
// build with the nozstd tag.
var (
	GzipHandler = &Handler{
		Suffixes:    []string{".gz"},
		Description: "GZip",
		Requires:    "github.com/klauspost/compress/gzip",
		Magic:       []byte{0x1f, 0x8b},
		NewReader:   newGzipReader,
		NewWriter:   newGzipWriter,
	}

	Bzip2Handler = &Handler{
		Suffixes:    []string{".bz2"},
		Description: "BZip2",
		Requires:    "github.com/dsnet/compress/bzip2",
		Magic:       []byte("BZh"),
		NewReader:   newBzip2Reader,
		NewWriter:   newBzip2Writer,
	}

	XzHandler = &Handler{
		Suffixes:    []string{".xz"},
		Description: "LZMA files (.xz format)",
		Requires:    "github.com/ulikunitz/xz",
		Magic:       []byte{0xfd, '7', 'z', 'X', 'Z', 0x00},
		NewReader:   newXzReader,
		NewWriter:   newXzWriter,
	}

	// The legacy .lzma container has no magic number; its first byte is the
	// properties byte, so it is left out of sniffing.
	LzmaHandler = &Handler{
		Suffixes:    []string{".lzma"},
		Description: "LZMA files (legacy .lzma format)",
		Requires:    "github.com/ulikunitz/xz/lzma",
		NewReader:   newLzmaReader,
		NewWriter:   newLzmaWriter,
	}
)

func init() {
	Register(GzipHandler)
	Register(Bzip2Handler)
	Register(XzHandler)
	Register(LzmaHandler)
}

// Gzip, reading concatenated members as one stream
func newGzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func newGzipWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

func newBzip2Reader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

func newBzip2Writer(w io.Writer, level int) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
}

// xz has presets rather than levels; the writer defaults are used.
func newXzReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func newXzWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

func newLzmaReader(r io.Reader) (io.ReadCloser, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(lr), nil
}

func newLzmaWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return lzma.NewWriter(w)
}

const zstdPackage = "github.com/klauspost/compress/zstd"
