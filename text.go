package autoopen

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Error policies for text modes.
const (
	ErrorsStrict  = "strict"
	ErrorsReplace = "replace"
	ErrorsIgnore  = "ignore"
)

// Options tunes a single Open call. The zero value selects the defaults.
type Options struct {
	// Encoding of text-mode files (default UTF-8). IANA and WHATWG names are
	// accepted, e.g. "latin-1", "windows-1252", "shift_jis".
	Encoding string

	// Errors selects how encoding errors are handled: "strict" (default),
	// "replace" or "ignore".
	Errors string

	// Newline controls line ending translation in text mode.
	//   ""     read: "\r\n" and "\r" become "\n"; write: "\n" becomes the
	//          platform line separator
	//   "\n"   no translation
	//   "\r", "\r\n"
	//          write: "\n" becomes the given separator; read: untranslated
	Newline string

	// Compression level for compressed writes; 0 selects the codec default.
	Level int
}

func (o *Options) hasTextOptions() bool {
	return o.Encoding != "" || o.Errors != "" || o.Newline != ""
}

func (o *Options) validate(m Mode) error {
	if m.Binary && o.hasTextOptions() {
		return fmt.Errorf("%w: binary mode does not take encoding, errors or newline", ErrInvalidOptions)
	}
	switch o.Errors {
	case "", ErrorsStrict, ErrorsReplace, ErrorsIgnore:
	default:
		return fmt.Errorf("%w: errors policy %q", ErrInvalidOptions, o.Errors)
	}
	switch o.Newline {
	case "", "\n", "\r", "\r\n":
	default:
		return fmt.Errorf("%w: newline %q", ErrInvalidOptions, o.Newline)
	}
	if !m.Binary {
		// Resolved again by the text layer; checked here so a bad name
		// fails before the file is created or truncated.
		if _, err := LookupEncoding(o.Encoding); err != nil {
			return err
		}
	}
	return nil
}

var encodingAliases = map[string]string{
	"utf8":    "utf-8",
	"utf_8":   "utf-8",
	"latin1":  "iso-8859-1",
	"latin-1": "iso-8859-1",
	"latin_1": "iso-8859-1",
	"l1":      "iso-8859-1",
	"cp1252":  "windows-1252",
}

// LookupEncoding resolves an encoding name. The empty name is UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return unicode.UTF8, nil
	}
	if alias, ok := encodingAliases[key]; ok {
		key = alias
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == encoding.Nop
}

// dropRuneError removes the replacement characters a decoder emits for
// bytes it cannot map.
var dropRuneError = runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))

// dropIllFormed copies valid UTF-8 and skips ill-formed bytes. An encoded
// U+FFFD in the input is kept.
type dropIllFormed struct{ transform.NopResetter }

func (dropIllFormed) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if c := src[nSrc]; c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			nSrc++
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}

// decoder turns bytes read from the file into UTF-8 text.
func decoder(enc encoding.Encoding, policy string) transform.Transformer {
	if isUTF8(enc) {
		switch policy {
		case ErrorsReplace:
			return runes.ReplaceIllFormed()
		case ErrorsIgnore:
			return dropIllFormed{}
		default:
			return encoding.UTF8Validator
		}
	}
	if policy == ErrorsIgnore {
		return transform.Chain(enc.NewDecoder(), dropRuneError)
	}
	return enc.NewDecoder()
}

// encoder turns UTF-8 text into the bytes written to the file.
func encoder(enc encoding.Encoding, policy string) transform.Transformer {
	if isUTF8(enc) {
		switch policy {
		case ErrorsReplace:
			return runes.ReplaceIllFormed()
		case ErrorsIgnore:
			return dropIllFormed{}
		default:
			return encoding.UTF8Validator
		}
	}
	switch policy {
	case ErrorsReplace:
		return encoding.ReplaceUnsupported(enc.NewEncoder())
	case ErrorsIgnore:
		return transform.Chain(runes.Remove(unencodable(enc)), enc.NewEncoder())
	default:
		return enc.NewEncoder()
	}
}

// unencodable matches the runes enc cannot represent.
func unencodable(enc encoding.Encoding) runes.Set {
	e := enc.NewEncoder()
	return runes.Predicate(func(r rune) bool {
		_, err := e.String(string(r))
		return err != nil
	})
}

// universalNewlines rewrites "\r\n" and lone "\r" to "\n".
type universalNewlines struct{ transform.NopResetter }

func (universalNewlines) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '\r' {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		if nSrc+1 == len(src) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = '\n'
		nDst++
		nSrc++
		if nSrc < len(src) && src[nSrc] == '\n' {
			nSrc++
		}
	}
	return nDst, nSrc, nil
}

// lineSeparator rewrites "\n" to sep.
type lineSeparator struct {
	transform.NopResetter
	sep string
}

func (t lineSeparator) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '\n' {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}
		if nDst+len(t.sep) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], t.sep)
		nSrc++
	}
	return nDst, nSrc, nil
}

func nativeLineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// textReader layers decoding and newline translation over r.
func textReader(r io.Reader, opts *Options) (io.Reader, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	t := decoder(enc, opts.Errors)
	if opts.Newline == "" {
		t = transform.Chain(t, universalNewlines{})
	}
	return transform.NewReader(r, t), nil
}

// textWriter layers newline translation and encoding over w. Close flushes
// pending output but does not close w.
func textWriter(w io.Writer, opts *Options) (io.WriteCloser, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	sep := opts.Newline
	if sep == "" {
		sep = nativeLineSeparator()
	}
	t := encoder(enc, opts.Errors)
	if sep != "\n" {
		t = transform.Chain(lineSeparator{sep: sep}, t)
	}
	return transform.NewWriter(w, t), nil
}
