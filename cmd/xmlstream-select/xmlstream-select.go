package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	xmlstream "github.com/dylemma/xml-stream"
	"github.com/dylemma/xml-stream/internal/cliutil"
	"github.com/dylemma/xml-stream/jsonstream"
	"github.com/dylemma/xml-stream/stream"
)

type cmdopts struct {
	Attr    string `long:"attr" description:"print this attribute of each matched element instead of its text"`
	JSON    bool   `long:"json" description:"treat input as JSON; the path selects nested object fields"`
	Version bool   `long:"version"`
}

const version = "1.0.0"

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmlstream-select: using xml-stream version %s\n", version)
}

func showUsage() {
	fmt.Printf(`Usage : xmlstream-select [options] path [files ...]
	Stream each document and print the value at every occurrence of
	the /-separated path, one per line
	--attr=NAME : print the named attribute instead of element text
	--json      : the inputs are JSON documents
	--version   : display the version of the library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	if len(args) < 1 {
		showUsage()
		return 1
	}
	path := strings.Split(strings.Trim(args[0], "/"), "/")

	inputCh := make(chan io.Reader)
	errCh := make(chan error)
	switch {
	case len(args) > 1: // filenames present
		go func() {
			defer close(inputCh)
			for _, f := range args[1:] {
				fh, err := os.Open(f)
				if err != nil {
					errCh <- err
					return
				}
				inputCh <- fh
			}
		}()
	case !cliutil.IsTty(os.Stdin):
		go func() {
			defer close(inputCh)
			inputCh <- os.Stdin
		}()
	default:
		showUsage()
		return 1
	}

	ctx := context.Background()
	for in := range inputCh {
		var results []string
		var perr error
		if opts.JSON {
			results, perr = selectJSON(ctx, path, in)
		} else {
			results, perr = selectXML(ctx, path, opts.Attr, in)
		}
		if c, ok := in.(io.Closer); ok && c != os.Stdin {
			c.Close()
		}
		if perr != nil {
			fmt.Fprintf(os.Stderr, "%s\n", perr)
			return 1
		}
		for _, r := range results {
			fmt.Println(r)
		}
	}

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "%s", err)
		return 1
	default:
	}

	return 0
}

func selectXML(ctx context.Context, path []string, attr string, in io.Reader) ([]string, error) {
	var sub stream.Parser[xmlstream.Event, string]
	if attr != "" {
		sub = xmlstream.AttrParser(attr)
	} else {
		sub = xmlstream.TrimmedText()
	}
	p := stream.IntoList(stream.JoinParser(xmlstream.Split(path...), sub))
	return xmlstream.ParseReader(ctx, p, in)
}

func selectJSON(ctx context.Context, path []string, in io.Reader) ([]string, error) {
	values := stream.JoinParser(jsonstream.Split(path...), jsonstream.StringValue())
	p := stream.IntoList(values)
	return jsonstream.ParseReader(ctx, p, in)
}
