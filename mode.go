package autoopen

import (
	"fmt"
	"os"
	"strings"
)

// Mode is a parsed open mode string such as "rt", "wb" or "a+".
type Mode struct {
	Read      bool // r
	Write     bool // w
	Append    bool // a
	Exclusive bool // x
	Update    bool // +
	Binary    bool // b; text otherwise
}

// ParseMode parses a mode string made of exactly one of "rwax", at most one
// of "bt" and an optional "+". An empty string means "r".
func ParseMode(mode string) (Mode, error) {
	if mode == "" {
		mode = "r"
	}

	var m Mode
	var kinds, formats int
	seen := make(map[rune]bool, len(mode))
	for _, c := range mode {
		if seen[c] {
			return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
		}
		seen[c] = true

		switch c {
		case 'r':
			m.Read = true
			kinds++
		case 'w':
			m.Write = true
			kinds++
		case 'a':
			m.Append = true
			kinds++
		case 'x':
			m.Exclusive = true
			kinds++
		case '+':
			m.Update = true
		case 'b':
			m.Binary = true
			formats++
		case 't':
			formats++
		default:
			return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
		}
	}

	if kinds != 1 || formats > 1 {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return m, nil
}

// Flag returns the os.OpenFile flags for the mode.
func (m Mode) Flag() int {
	var flag int
	switch {
	case m.Read:
		flag = os.O_RDONLY
	case m.Write:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case m.Append:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case m.Exclusive:
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	if m.Update {
		flag &^= os.O_WRONLY
		flag |= os.O_RDWR
	}
	return flag
}

// Writing reports whether the mode produces data, as opposed to consuming it.
func (m Mode) Writing() bool {
	return m.Write || m.Append || m.Exclusive
}

// String returns the canonical form of the mode, e.g. "rt" or "a+b".
func (m Mode) String() string {
	var b strings.Builder
	switch {
	case m.Read:
		b.WriteByte('r')
	case m.Write:
		b.WriteByte('w')
	case m.Append:
		b.WriteByte('a')
	case m.Exclusive:
		b.WriteByte('x')
	}
	if m.Update {
		b.WriteByte('+')
	}
	if m.Binary {
		b.WriteByte('b')
	} else {
		b.WriteByte('t')
	}
	return b.String()
}
