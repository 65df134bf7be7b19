package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConvertAndCat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt.gz")
	data := []byte(strings.Repeat("the quick brown fox\n", 200))

	if err := os.WriteFile(src, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := run([]string{"convert", "-l", "9", src, dst}, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Errorf("Expected gzip output, got % x", raw[:min(len(raw), 4)])
	}

	var out bytes.Buffer
	if err := run([]string{"cat", dst}, nil, &out); err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Error("cat output does not match the original")
	}
}

func TestCatStdin(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"cat"}, strings.NewReader("from stdin"), &out); err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	if out.String() != "from stdin" {
		t.Errorf("Expected %q, got %q", "from stdin", out.String())
	}
}

func TestCatExplicitStdin(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"cat", "-"}, strings.NewReader("dash"), &out); err != nil {
		t.Fatalf("cat - failed: %v", err)
	}
	if out.String() != "dash" {
		t.Errorf("Expected %q, got %q", "dash", out.String())
	}
}

func TestConvertToStdout(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.bz2")
	if err := run([]string{"convert", "-", src}, strings.NewReader("round trip"), &bytes.Buffer{}); err != nil {
		t.Fatalf("convert to file failed: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"convert", src, "-"}, nil, &out); err != nil {
		t.Fatalf("convert to stdout failed: %v", err)
	}
	if out.String() != "round trip" {
		t.Errorf("Expected %q, got %q", "round trip", out.String())
	}
}

func TestConvertStdinToXz(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "piped.xz")
	if err := run([]string{"convert", "-", dst}, strings.NewReader("piped data"), &bytes.Buffer{}); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"cat", dst}, nil, &out); err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	if out.String() != "piped data" {
		t.Errorf("Expected %q, got %q", "piped data", out.String())
	}
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "a.gz")
	if err := run([]string{"convert", "-", gz}, strings.NewReader("info"), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	// gzip content behind a plain name
	disguised := filepath.Join(dir, "a.dat")
	raw, err := os.ReadFile(gz)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(disguised, raw, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"--log-level", "ERROR", "info", gz, disguised}, nil, &out); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", out.String())
	}
	if !strings.Contains(lines[0], "suffix=GZip") || !strings.Contains(lines[0], "content=GZip") {
		t.Errorf("Unexpected info line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "suffix=none") || !strings.Contains(lines[1], "content=GZip") {
		t.Errorf("Unexpected info line: %q", lines[1])
	}
}

func TestExtendedFlag(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "x.lz4")
	data := strings.Repeat("lz4 ", 1000)

	if err := run([]string{"--extended", "convert", "-", dst}, strings.NewReader(data), &bytes.Buffer{}); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) >= len(data) {
		t.Errorf("Expected lz4 output to be compressed, got %d bytes", len(raw))
	}

	var out bytes.Buffer
	if err := run([]string{"cat", dst}, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() == data {
		t.Error("Expected raw lz4 bytes without --extended")
	}

	out.Reset()
	if err := run([]string{"--extended", "cat", dst}, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != data {
		t.Error("cat --extended output does not match the original")
	}
}

func TestBadArguments(t *testing.T) {
	for _, argv := range [][]string{
		{"convert", "only-one"},
		{"--log-format", "XML", "cat"},
		{"info", filepath.Join(t.TempDir(), "missing")},
		{"bogus"},
	} {
		if err := run(argv, nil, &bytes.Buffer{}); err == nil {
			t.Errorf("Expected an error for %v", argv)
		}
	}
}
