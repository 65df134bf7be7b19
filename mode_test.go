package autoopen

import (
	"errors"
	"os"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode   string
		want   Mode
		flag   int
		String string
	}{
		{"", Mode{Read: true}, os.O_RDONLY, "rt"},
		{"r", Mode{Read: true}, os.O_RDONLY, "rt"},
		{"rb", Mode{Read: true, Binary: true}, os.O_RDONLY, "rb"},
		{"tr", Mode{Read: true}, os.O_RDONLY, "rt"},
		{"wt", Mode{Write: true}, os.O_WRONLY | os.O_CREATE | os.O_TRUNC, "wt"},
		{"ab", Mode{Append: true, Binary: true}, os.O_WRONLY | os.O_CREATE | os.O_APPEND, "ab"},
		{"x", Mode{Exclusive: true}, os.O_WRONLY | os.O_CREATE | os.O_EXCL, "xt"},
		{"r+b", Mode{Read: true, Update: true, Binary: true}, os.O_RDWR, "r+b"},
		{"w+", Mode{Write: true, Update: true}, os.O_RDWR | os.O_CREATE | os.O_TRUNC, "w+t"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := ParseMode(tt.mode)
			if err != nil {
				t.Fatalf("ParseMode(%q) failed: %v", tt.mode, err)
			}
			if m != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, m)
			}
			if m.Flag() != tt.flag {
				t.Errorf("Expected flag %#x, got %#x", tt.flag, m.Flag())
			}
			if m.String() != tt.String {
				t.Errorf("Expected %q, got %q", tt.String, m.String())
			}
		})
	}
}

func TestParseModeInvalid(t *testing.T) {
	for _, mode := range []string{"rw", "bt", "z", "rr", "r++", "+", "b", "rU"} {
		if _, err := ParseMode(mode); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseMode(%q): expected ErrInvalidMode, got %v", mode, err)
		}
	}
}

func TestModeWriting(t *testing.T) {
	for mode, want := range map[string]bool{"r": false, "r+": false, "w": true, "a": true, "x": true} {
		m, _ := ParseMode(mode)
		if m.Writing() != want {
			t.Errorf("%q: expected Writing()=%v", mode, want)
		}
	}
}
