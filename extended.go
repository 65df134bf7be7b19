package autoopen

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Extended handlers are not part of DefaultRegistry, so files with these
// suffixes open as plain files unless a registry opts in:
//
//	reg := autoopen.DefaultRegistry.Clone()
//	for _, h := range autoopen.ExtendedHandlers() {
//	    reg.Register(h)
//	}
//	opener := autoopen.New(&autoopen.Config{Registry: reg})
var (
	LZ4Handler = &Handler{
		Suffixes:    []string{".lz4"},
		Description: "LZ4 frame",
		Requires:    "github.com/pierrec/lz4/v4",
		Magic:       []byte{0x04, 0x22, 0x4d, 0x18},
		NewReader:   newLZ4Reader,
		NewWriter:   newLZ4Writer,
	}

	// Brotli streams have no magic number.
	BrotliHandler = &Handler{
		Suffixes:    []string{".br"},
		Description: "Brotli",
		Requires:    "github.com/andybalholm/brotli",
		NewReader:   newBrotliReader,
		NewWriter:   newBrotliWriter,
	}

	SnappyHandler = &Handler{
		Suffixes:    []string{".sz", ".snappy"},
		Description: "Snappy (framed)",
		Requires:    "github.com/golang/snappy",
		Magic:       []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'},
		NewReader:   newSnappyReader,
		NewWriter:   newSnappyWriter,
	}
)

// ExtendedHandlers returns the opt-in handlers for .lz4, .br, .sz and .snappy.
func ExtendedHandlers() []*Handler {
	return []*Handler{LZ4Handler, BrotliHandler, SnappyHandler}
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func newLZ4Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func newLZ4Writer(w io.Writer, level int) (io.WriteCloser, error) {
	lw := lz4.NewWriter(w)
	if level < 0 || level >= len(lz4Levels) {
		return nil, ErrInvalidLevel
	}
	if level > 0 {
		if err := lw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
			return nil, err
		}
	}
	return lw, nil
}

func newBrotliReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

func newBrotliWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = brotli.DefaultCompression
	}
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		return nil, ErrInvalidLevel
	}
	return brotli.NewWriterLevel(w, level), nil
}

// Snappy has no compression levels.
func newSnappyReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}

func newSnappyWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}
