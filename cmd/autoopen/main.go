package main

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/absfs/autoopen"
)

type cliArgs struct {
	Extended  bool
	LogLevel  string
	LogFormat string

	Cat struct {
		Files []string
	}
	Convert struct {
		Src   string
		Dst   string
		Level int
	}
	Info struct {
		Files []string
	}

	stdin  io.Reader
	stdout io.Writer
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(argv []string, stdin io.Reader, stdout io.Writer) error {
	args := &cliArgs{stdin: stdin, stdout: stdout}

	app := kingpin.New("autoopen", "Read, write and convert files compressed with gzip, bzip2, xz, lzma or zstd, picking the codec from the file name")
	app.HelpFlag.Short('h')
	app.Flag("extended", "Also handle .lz4, .br, .sz and .snappy files").Envar("AUTOOPEN_EXTENDED").BoolVar(&args.Extended)
	app.Flag("log-level", "Log-Level, must be one of [DEBUG, INFO, WARN, ERROR]").Default("INFO").Envar("LOG_LEVEL").EnumVar(&args.LogLevel, "DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
	app.Flag("log-format", "Log-Format, must be one of [TEXT, JSON]").Default("TEXT").Envar("LOG_FORMAT").EnumVar(&args.LogFormat, "TEXT", "JSON")

	cat := app.Command("cat", "Decompress files to standard output")
	cat.Arg("files", "files to read, - for standard input").Default(autoopen.StdioName).StringsVar(&args.Cat.Files)

	convert := app.Command("convert", "Copy a file, recompressing it according to the destination suffix")
	convert.Arg("src", "source file, - for standard input").Required().StringVar(&args.Convert.Src)
	convert.Arg("dst", "destination file, - for standard output").Required().StringVar(&args.Convert.Dst)
	convert.Flag("level", "compression level, 0 for the codec default").Short('l').Default("0").Envar("AUTOOPEN_LEVEL").IntVar(&args.Convert.Level)

	info := app.Command("info", "Show the codec chosen by suffix and the codec detected from content")
	info.Arg("files", "files to inspect").Required().ExistingFilesVar(&args.Info.Files)

	cmd, err := app.Parse(argv)
	if err != nil {
		return err
	}

	args.stdioNames()
	setLogLevel(args.LogLevel)
	setLogFormat(args.LogFormat)

	opener := args.opener()
	switch cmd {
	case cat.FullCommand():
		return args.cat(opener)
	case convert.FullCommand():
		return args.convert(opener)
	case info.FullCommand():
		return args.info(opener)
	}
	return nil
}

// stdioNames restores "-" arguments, which kingpin hands over as "".
func (args *cliArgs) stdioNames() {
	for i, name := range args.Cat.Files {
		if name == "" {
			args.Cat.Files[i] = autoopen.StdioName
		}
	}
	if args.Convert.Src == "" {
		args.Convert.Src = autoopen.StdioName
	}
	if args.Convert.Dst == "" {
		args.Convert.Dst = autoopen.StdioName
	}
}

func (args *cliArgs) opener() *autoopen.Opener {
	registry := autoopen.DefaultRegistry
	if args.Extended {
		registry = registry.Clone()
		for _, h := range autoopen.ExtendedHandlers() {
			registry.Register(h)
		}
	}
	return autoopen.New(&autoopen.Config{
		Registry: registry,
		Stdin:    args.stdin,
		Stdout:   args.stdout,
	})
}

type UTCFormatter struct {
	log.Formatter
}

func (u UTCFormatter) Format(e *log.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

func setLogFormat(logFormat string) {
	switch logFormat {
	case "JSON":
		log.SetFormatter(UTCFormatter{Formatter: &log.JSONFormatter{}})
	default:
		log.SetFormatter(UTCFormatter{Formatter: &log.TextFormatter{FullTimestamp: true}})
	}
}

func setLogLevel(logLevel string) {
	level, err := log.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		log.WithError(err).Warn("unknown log level, keeping the current one")
		return
	}
	log.SetLevel(level)
}
