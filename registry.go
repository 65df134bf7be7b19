package autoopen

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Handler knows how to wrap a stream for one compression format.
type Handler struct {
	// Suffixes the handler is registered for, with the leading dot (".gz").
	Suffixes []string

	// Human-readable description, e.g. "GZip".
	Description string

	// Import path of the package providing the codec. Reported when the
	// handler is registered without constructors.
	Requires string

	// Leading bytes of a stream in this format, if the format has any.
	Magic []byte

	// NewReader wraps r with a decompressor.
	NewReader func(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps w with a compressor. Level 0 selects the codec default.
	NewWriter func(w io.Writer, level int) (io.WriteCloser, error)
}

// Supported reports whether the handler's codec is available.
func (h *Handler) Supported() bool {
	return h.NewReader != nil && h.NewWriter != nil
}

func (h *Handler) String() string {
	if h.Description != "" {
		return h.Description
	}
	return strings.Join(h.Suffixes, ",")
}

// Registry maps filename suffixes to handlers. Several handlers may share a
// suffix; the first supported one wins.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]*Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]*Handler)}
}

// DefaultRegistry holds the built-in handlers for .gz, .bz2, .xz, .lzma,
// .zst and .zstd.
var DefaultRegistry = NewRegistry()

// Register adds h to the default registry.
func Register(h *Handler) {
	DefaultRegistry.Register(h)
}

// Register appends h to the handler list of each of its suffixes.
func (r *Registry) Register(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, suffix := range h.Suffixes {
		r.handlers[suffix] = append(r.handlers[suffix], h)
	}
}

// Handlers returns the handlers registered for suffix, in registration order.
func (r *Registry) Handlers(suffix string) []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*Handler(nil), r.handlers[suffix]...)
}

// Suffixes returns all registered suffixes, sorted.
func (r *Registry) Suffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.handlers)
}

func sortedKeys(m map[string][]*Handler) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the registry that can be extended independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for suffix, handlers := range r.handlers {
		c.handlers[suffix] = append([]*Handler(nil), handlers...)
	}
	return c
}

// Find returns the handler for name's final suffix. A nil handler with a nil
// error means the file is not compressed. If handlers exist for the suffix
// but none is supported, Find returns a *NoCompressorError.
func (r *Registry) Find(name string) (*Handler, error) {
	suffix := Suffix(name)
	if suffix == "" {
		return nil, nil
	}

	candidates := r.Handlers(suffix)
	if len(candidates) == 0 {
		return nil, nil
	}
	for _, h := range candidates {
		if h.Supported() {
			return h, nil
		}
	}
	return nil, &NoCompressorError{Name: name, Candidates: candidates}
}

// Suffix returns the final suffix of name's base element, including the dot.
// It is empty for names without a dot, hidden files such as ".bashrc" and
// names ending in a dot. Matching is case-sensitive: "a.GZ" has suffix ".GZ".
func Suffix(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	if strings.Trim(base[:i], ".") == "" {
		return ""
	}
	return base[i:]
}

// NoCompressorError is returned when a file's suffix names a compression
// format whose codec is not available in this build.
type NoCompressorError struct {
	Name       string
	Candidates []*Handler
}

func (e *NoCompressorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "autoopen: %s is compressed, but no matching compressor is available; missing:", e.Name)
	for _, h := range e.Candidates {
		fmt.Fprintf(&b, "\n - %s for %s", h.Requires, h)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrNoCompressor) true for a *NoCompressorError.
func (e *NoCompressorError) Is(target error) bool {
	return target == ErrNoCompressor
}
