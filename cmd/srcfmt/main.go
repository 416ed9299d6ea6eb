// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

// srcfmt inspects and extracts Source engine file formats.
//
// Usage:
//
//	srcfmt vpk list|cat|extract [flags] <archive> ...
//	srcfmt bsp info|entities|pakfile [flags] <map> ...
//	srcfmt kv decode|encode [flags] <file>
//	srcfmt dem info [flags] <demo>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches one command line. Streams are injected for tests.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		printUsage(stderr)
		if len(args) == 1 && isHelp(args[0]) {
			return nil
		}

		return errors.New("missing command")
	}

	streams := ioStreams{stdin: stdin, stdout: stdout, stderr: stderr}
	group, cmd, rest := args[0], args[1], args[2:]

	var handlers map[string]func(ioStreams, []string) error
	switch group {
	case "vpk":
		handlers = map[string]func(ioStreams, []string) error{
			"list":    vpkListCmd,
			"cat":     vpkCatCmd,
			"extract": vpkExtractCmd,
		}
	case "bsp":
		handlers = map[string]func(ioStreams, []string) error{
			"info":     bspInfoCmd,
			"entities": bspEntitiesCmd,
			"pakfile":  bspPakfileCmd,
		}
	case "kv":
		handlers = map[string]func(ioStreams, []string) error{
			"decode": kvDecodeCmd,
			"encode": kvEncodeCmd,
		}
	case "dem":
		handlers = map[string]func(ioStreams, []string) error{
			"info": demInfoCmd,
		}
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command group %q", group)
	}

	handler, ok := handlers[cmd]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q %q", group, cmd)
	}

	return handler(streams, rest)
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "--help" || arg == "-h"
}

// ioStreams carries the process streams.
type ioStreams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configPath string
	logLevel   string
	format     string
}

// register adds common flags to fs with defaultFormat for --format.
func (c *commonFlags) register(fs *pflag.FlagSet, defaultFormat string) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file (default: $"+configEnv+")")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVarP(&c.format, "format", "o", defaultFormat, "output format: text, json, yaml, cbor, kv")
}

// cmdEnv is the resolved runtime of one command.
type cmdEnv struct {
	logger *slog.Logger
	cfg    Config
}

// setup loads config and builds the logger; --log-level overrides the config file.
func (c *commonFlags) setup(stderr io.Writer) (*cmdEnv, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}

	levelName := cfg.Log.Level
	if c.logLevel != "" {
		levelName = c.logLevel
	}

	level, err := parseLevel(levelName)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return &cmdEnv{cfg: cfg, logger: logger}, nil
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	return fs
}

// parseArgs parses flags and checks the positional argument count.
func parseArgs(fs *pflag.FlagSet, args []string, minArgs, maxArgs int, usage string) ([]string, error) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: srcfmt %s %s\n\n", fs.Name(), usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	pos := fs.Args()
	if len(pos) < minArgs || (maxArgs >= 0 && len(pos) > maxArgs) {
		fs.Usage()
		return nil, fmt.Errorf("%s: expected %s", fs.Name(), usage)
	}

	return pos, nil
}

// signalContext returns a context canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `srcfmt - inspect and extract Source engine file formats

USAGE
    srcfmt <group> <command> [flags] <args>...

COMMANDS
    vpk list <archive>               List archive entries
    vpk cat <archive> <entry>        Write one entry to stdout
    vpk extract <archive> <dir>      Extract entries to a directory
    bsp info <map>                   Show header and lump table
    bsp entities <map>               Decode the entity lump
    bsp pakfile <map> [out.zip]      List or copy the embedded archive
    kv decode <file|->               Decode KeyValues text
    kv encode <file|->               Encode JSON or YAML as KeyValues text
    dem info <demo>                  Show demo header

COMMON FLAGS
    --config <file>      YAML config (default: $SRCFMT_CONFIG)
    --log-level <level>  debug, info, warn, error
    -o, --format <fmt>   text, json, yaml, cbor, kv
`)
}
