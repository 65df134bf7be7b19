package autoopen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/absfs/absfs"
)

// StdioName is the file name that stands for standard input (read modes) or
// standard output (all other modes).
const StdioName = "-"

var (
	ErrInvalidMode     = errors.New("autoopen: invalid mode")
	ErrInvalidOptions  = errors.New("autoopen: invalid options")
	ErrUnsupportedMode = errors.New("autoopen: mode not supported for compressed files")
	ErrNoCompressor    = errors.New("autoopen: no compressor available")
	ErrUnknownEncoding = errors.New("autoopen: unknown encoding")
	ErrInvalidLevel    = errors.New("autoopen: invalid compression level")
	ErrNotReadable     = errors.New("autoopen: file not open for reading")
	ErrNotWritable     = errors.New("autoopen: file not open for writing")
)

// Config holds Opener configuration. Zero fields take their defaults.
type Config struct {
	// Filesystem files are opened on (default: the host filesystem)
	FS absfs.Filer

	// Suffix table (default: DefaultRegistry)
	Registry *Registry

	// Standard streams for the "-" name (default: os.Stdin and os.Stdout,
	// looked up at open time)
	Stdin  io.Reader
	Stdout io.Writer

	// Read buffer in front of decompressors (default: 64KB)
	BufferSize int
}

// DefaultConfig returns a config with the host filesystem and the default
// registry.
func DefaultConfig() *Config {
	return &Config{
		FS:         NewOSFS(),
		Registry:   DefaultRegistry,
		BufferSize: 64 * 1024,
	}
}

// Stats holds counters for the files an Opener has handed out.
type Stats struct {
	FilesCompressed   int64 // opened for writing through a codec
	FilesDecompressed int64 // opened for reading through a codec
	FilesPlain        int64
	FilesStdio        int64

	// Uncompressed bytes that passed through wrapped handles, counted on
	// Close.
	BytesRead    int64
	BytesWritten int64

	HandlerCounts map[string]int64 // by handler description
}

type counters struct {
	FilesCompressed   int64
	FilesDecompressed int64
	FilesPlain        int64
	FilesStdio        int64
	BytesRead         int64
	BytesWritten      int64
}

// Opener opens files, choosing a codec from the file name's suffix.
type Opener struct {
	fs         absfs.Filer
	registry   *Registry
	stdin      io.Reader
	stdout     io.Writer
	bufferSize int

	stats         counters
	handlerCounts sync.Map // map[string]*int64
	mu            sync.RWMutex
}

// New creates an Opener. A nil config is DefaultConfig().
func New(config *Config) *Opener {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}

	o := &Opener{
		fs:         config.FS,
		registry:   config.Registry,
		stdin:      config.Stdin,
		stdout:     config.Stdout,
		bufferSize: config.BufferSize,
	}
	if o.fs == nil {
		o.fs = defaults.FS
	}
	if o.registry == nil {
		o.registry = defaults.Registry
	}
	if o.bufferSize <= 0 {
		o.bufferSize = defaults.BufferSize
	}
	return o
}

var defaultOpener = New(nil)

// Open opens name on the host filesystem with the default registry. See
// (*Opener).Open.
func Open(name, mode string, opts *Options) (File, error) {
	return defaultOpener.Open(name, mode, opts)
}

// Registry returns the suffix table used by o.
func (o *Opener) Registry() *Registry {
	return o.registry
}

// Open opens name like os.OpenFile, transparently compressing or
// decompressing when the final suffix of name is registered.
//
// mode is one of "r", "w", "a", "x", optionally followed by "+" and one of
// "b" (binary) or "t" (text, the default). opts may be nil.
//
// The name "-" returns standard input for read modes and standard output
// otherwise; closing it leaves the process stream open. Unregistered
// suffixes open the plain file; in binary mode that file is returned as is.
// Errors from the filesystem are returned unchanged. A suffix whose codec is
// not built in fails with an error matching ErrNoCompressor.
func (o *Opener) Open(name, mode string, opts *Options) (File, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.validate(m); err != nil {
		return nil, err
	}

	if name == StdioName {
		return o.openStdio(m, opts)
	}

	h, err := o.registry.Find(name)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return o.openPlain(name, m, opts)
	}
	return o.openCompressed(name, h, m, opts)
}

func (o *Opener) openStdio(m Mode, opts *Options) (File, error) {
	s := &stdio{}
	if m.Read {
		s.name = "<stdin>"
		s.r = o.stdin
		if s.r == nil {
			s.r = os.Stdin
		}
	} else {
		s.name = "<stdout>"
		s.w = o.stdout
		if s.w == nil {
			s.w = os.Stdout
		}
	}
	o.incrementStat(&o.stats.FilesStdio)

	if m.Binary {
		return s, nil
	}
	return o.withText(&stream{opener: o, name: s.name, r: s.r, w: s.w}, m, opts)
}

func (o *Opener) openPlain(name string, m Mode, opts *Options) (File, error) {
	f, err := o.fs.OpenFile(name, m.Flag(), 0666)
	if err != nil {
		return nil, err
	}
	o.incrementStat(&o.stats.FilesPlain)

	if m.Binary {
		return f, nil
	}

	s := &stream{opener: o, name: name, closers: []io.Closer{f}}
	if m.Read || m.Update {
		s.r = f
	}
	if m.Writing() || m.Update {
		s.w = f
	}
	return o.withText(s, m, opts)
}

func (o *Opener) openCompressed(name string, h *Handler, m Mode, opts *Options) (File, error) {
	if m.Update {
		return nil, fmt.Errorf("%w: %q on %s file %s", ErrUnsupportedMode, m.String(), h, name)
	}

	f, err := o.fs.OpenFile(name, m.Flag(), 0666)
	if err != nil {
		return nil, err
	}

	s := &stream{opener: o, name: name, handler: h}
	if m.Read {
		br := bufio.NewReaderSize(f, o.bufferSize)
		if _, err := br.Peek(1); err == io.EOF {
			// An empty file reads as an empty stream.
			s.r = bytes.NewReader(nil)
			s.closers = []io.Closer{f}
		} else if err != nil {
			f.Close()
			return nil, err
		} else {
			dr, err := h.NewReader(br)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("autoopen: %s: %s: %w", name, h, err)
			}
			s.r = dr
			s.closers = []io.Closer{dr, f}
		}
		o.incrementStat(&o.stats.FilesDecompressed)
	} else {
		cw, err := h.NewWriter(f, opts.Level)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("autoopen: %s: %s: %w", name, h, err)
		}
		s.w = cw
		s.closers = []io.Closer{cw, f}
		o.incrementStat(&o.stats.FilesCompressed)
	}
	o.incrementHandler(h)

	return o.withText(s, m, opts)
}

// withText adds the text layer to s for text modes. On error every layer
// of s is closed.
func (o *Opener) withText(s *stream, m Mode, opts *Options) (File, error) {
	if m.Binary {
		return s, nil
	}

	if s.r != nil {
		tr, err := textReader(s.r, opts)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.r = tr
	}
	if s.w != nil {
		tw, err := textWriter(s.w, opts)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.w = tw
		s.closers = append([]io.Closer{tw}, s.closers...)
	}
	return s, nil
}

// GetStats returns a snapshot of the counters.
func (o *Opener) GetStats() *Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	stats := &Stats{
		FilesCompressed:   atomic.LoadInt64(&o.stats.FilesCompressed),
		FilesDecompressed: atomic.LoadInt64(&o.stats.FilesDecompressed),
		FilesPlain:        atomic.LoadInt64(&o.stats.FilesPlain),
		FilesStdio:        atomic.LoadInt64(&o.stats.FilesStdio),
		BytesRead:         atomic.LoadInt64(&o.stats.BytesRead),
		BytesWritten:      atomic.LoadInt64(&o.stats.BytesWritten),
		HandlerCounts:     make(map[string]int64),
	}
	o.handlerCounts.Range(func(key, value any) bool {
		stats.HandlerCounts[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})
	return stats
}

// ResetStats sets all counters to zero.
func (o *Opener) ResetStats() {
	o.mu.Lock()
	defer o.mu.Unlock()

	atomic.StoreInt64(&o.stats.FilesCompressed, 0)
	atomic.StoreInt64(&o.stats.FilesDecompressed, 0)
	atomic.StoreInt64(&o.stats.FilesPlain, 0)
	atomic.StoreInt64(&o.stats.FilesStdio, 0)
	atomic.StoreInt64(&o.stats.BytesRead, 0)
	atomic.StoreInt64(&o.stats.BytesWritten, 0)
	o.handlerCounts.Range(func(key, _ any) bool {
		o.handlerCounts.Delete(key)
		return true
	})
}

func (o *Opener) incrementStat(counter *int64) {
	atomic.AddInt64(counter, 1)
}

func (o *Opener) addBytes(counter *int64, n int64) {
	atomic.AddInt64(counter, n)
}

func (o *Opener) incrementHandler(h *Handler) {
	val, _ := o.handlerCounts.LoadOrStore(h.String(), new(int64))
	atomic.AddInt64(val.(*int64), 1)
}
