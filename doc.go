// Package autoopen opens files that may be compressed with one of the common
// single-file formats, choosing the codec from the file name.
//
// It is a drop-in for os.OpenFile in tools that should not care whether their
// input or output is compressed:
//
//	f, err := autoopen.Open(os.Args[1], "wt", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//	fmt.Fprintln(f, "Hello world!")
//
// Called with "hello.txt" the file is written as plain text, with
// "hello.txt.gz" it is gzip compressed, and with "-" the text goes to
// standard output.
//
// # Suffixes
//
// Only the final suffix of the base name counts, and it is matched
// case-sensitively: "logs.tar.gz" is gzip, "LOG.GZ" is a plain file.
//
//	.gz          gzip
//	.bz2         bzip2
//	.xz          xz
//	.lzma        legacy LZMA ("alone") format
//	.zst, .zstd  Zstandard (left out with -tags nozstd)
//
// Unknown suffixes open the plain file. In binary mode the returned File is
// the underlying file itself, so Open(name, "rb", nil) on "data.bin" yields
// an *os.File.
//
// # Modes
//
// Modes follow the r/w/a/x convention with an optional "+" and a "b" or "t"
// qualifier; text is the default. Text mode decodes from Options.Encoding and
// applies Options.Newline. "+" modes are only available for plain files.
//
// # Custom handlers
//
// A Handler binds suffixes to a reader and a writer constructor. Register
// adds one to DefaultRegistry; an Opener built with its own Registry can mix
// in ExtendedHandlers (.lz4, .br, .sz) or formats of its own. A handler
// without constructors marks a format this build cannot handle, and opening
// such a file fails with an error matching ErrNoCompressor.
package autoopen
