//go:build !nozstd

package autoopen

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdHandler opens Zstandard files. Build with -tags nozstd to leave the
// codec out; the suffixes then report a missing compressor.
var ZstdHandler = &Handler{
	Suffixes:    []string{".zst", ".zstd"},
	Description: "ZStandard",
	Requires:    zstdPackage,
	Magic:       zstdMagic,
	NewReader:   newZstdReader,
	NewWriter:   newZstdWriter,
}

func init() {
	Register(ZstdHandler)
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func newZstdWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		return zstd.NewWriter(w)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}
