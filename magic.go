package autoopen

import (
	"bytes"
	"io"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// maxMagicLen bounds how many bytes Detect reads.
const maxMagicLen = 16

// Detect reads the first bytes of r and returns the registered handler whose
// magic number they start with. It returns nil when nothing matches. The
// bytes consumed from r are not put back.
func (r *Registry) Detect(rd io.Reader) (*Handler, error) {
	buf := make([]byte, maxMagicLen)
	n, err := io.ReadFull(rd, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return r.Sniff(buf[:n]), nil
}

// Sniff returns the registered handler whose magic number prefixes data, or
// nil.
func (r *Registry) Sniff(data []byte) *Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Longest magic first, so a specific signature beats a shorter one.
	var best *Handler
	for _, suffix := range sortedKeys(r.handlers) {
		for _, h := range r.handlers[suffix] {
			if len(h.Magic) == 0 || !bytes.HasPrefix(data, h.Magic) {
				continue
			}
			if best == nil || len(h.Magic) > len(best.Magic) {
				best = h
			}
		}
	}
	return best
}

// IsCompressed reports whether data starts with the magic number of a
// handler in the default registry.
func IsCompressed(data []byte) (*Handler, bool) {
	h := DefaultRegistry.Sniff(data)
	return h, h != nil
}
