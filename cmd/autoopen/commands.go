package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/absfs/autoopen"
)

func (args *cliArgs) cat(opener *autoopen.Opener) error {
	out, err := opener.Open(autoopen.StdioName, "wb", nil)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, name := range args.Cat.Files {
		if err := copyFrom(opener, name, out); err != nil {
			return err
		}
	}
	return nil
}

func copyFrom(opener *autoopen.Opener, name string, out io.Writer) error {
	in, err := opener.Open(name, "rb", nil)
	if err != nil {
		return err
	}
	defer in.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.WithFields(log.Fields{"file": name, "codec": codecName(autoopen.HandlerOf(in))}).
		Debugf("read %s", humanize.Bytes(uint64(n)))
	return nil
}

func (args *cliArgs) convert(opener *autoopen.Opener) (err error) {
	in, err := opener.Open(args.Convert.Src, "rb", nil)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := opener.Open(args.Convert.Dst, "wb", &autoopen.Options{Level: args.Convert.Level})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"src":     args.Convert.Src,
		"dst":     args.Convert.Dst,
		"decoder": codecName(autoopen.HandlerOf(in)),
		"encoder": codecName(autoopen.HandlerOf(out)),
	}).Infof("converted %s", humanize.Bytes(uint64(n)))
	return nil
}

func (args *cliArgs) info(opener *autoopen.Opener) error {
	for _, name := range args.Info.Files {
		bySuffix, err := opener.Registry().Find(name)
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("codec not available")
		}

		byContent, size, err := sniff(opener.Registry(), name)
		if err != nil {
			return err
		}

		fmt.Fprintf(args.stdout, "%s\t%s\tsuffix=%s\tcontent=%s\n",
			name, humanize.Bytes(uint64(size)), codecName(bySuffix), codecName(byContent))

		if byContent != nil && bySuffix != byContent {
			log.WithField("file", name).Warnf("content looks like %s, but the suffix selects %s", byContent, codecName(bySuffix))
		}
	}
	return nil
}

func sniff(registry *autoopen.Registry, name string) (*autoopen.Handler, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	h, err := registry.Detect(f)
	return h, st.Size(), err
}

func codecName(h *autoopen.Handler) string {
	if h == nil {
		return "none"
	}
	return h.String()
}
