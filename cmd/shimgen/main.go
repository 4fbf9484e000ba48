// Command shimgen writes the exported entry points of a plugin package.
//
// Typical use from the plugin package:
//
//	//go:generate go run github.com/reglet-dev/native-host-sdk/cmd/shimgen
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/reglet-dev/native-host-sdk/host"
	"github.com/reglet-dev/native-host-sdk/parser"
	"github.com/reglet-dev/native-host-sdk/shimgen"
	"github.com/reglet-dev/native-host-sdk/validation"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shimgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		dir        = fs.String("dir", ".", "plugin package directory")
		descriptor = fs.String("descriptor", "", "descriptor file (default: plugin.{yaml,yml,json,hcl} in -dir when present)")
		out        = fs.String("out", shimgen.DefaultOutput, "output file, relative to -dir")
		schema     = fs.Bool("schema", false, "print the descriptor JSON Schema and exit")
		logLevel   = fs.String("log-level", "warn", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *schema {
		raw, err := validation.Schema()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, string(raw))
		return 0
	}

	logger := host.NewLogger(*logLevel, "text", stderr)

	path := *descriptor
	if path == "" {
		found, err := parser.Find(*dir)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		path = found
	}

	var d *parser.Descriptor
	if path != "" {
		loaded, err := shimgen.LoadDescriptor(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		d = loaded
		logger.Debug("using descriptor", "path", path)
	}

	g := shimgen.NewGenerator(shimgen.WithLogger(logger))
	written, err := g.WriteFile(*dir, *out, d)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, written)
	return 0
}
