// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/woozymasta/pathrules"

	"github.com/woozymasta/srcfmt/vpk"
)

// selectFlags map to vpk.SelectOptions.
type selectFlags struct {
	prefix     string
	extensions []string
	include    []string
	exclude    []string
}

func (s *selectFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.prefix, "prefix", "", "keep entries under this directory")
	fs.StringSliceVar(&s.extensions, "ext", nil, "keep entries with these extensions")
	fs.StringArrayVar(&s.include, "include", nil, "include glob rule (repeatable)")
	fs.StringArrayVar(&s.exclude, "exclude", nil, "exclude glob rule (repeatable)")
}

// options builds selection options; include rules precede exclude rules.
func (s *selectFlags) options() vpk.SelectOptions {
	opts := vpk.SelectOptions{Prefix: s.prefix, Extensions: s.extensions}
	for _, pattern := range s.include {
		opts.Rules = append(opts.Rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: pattern})
	}
	for _, pattern := range s.exclude {
		opts.Rules = append(opts.Rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: pattern})
	}

	return opts
}

// vpkListing is the output of vpk list.
type vpkListing struct {
	Archive    string      `json:"archive" yaml:"archive"`
	Version    uint32      `json:"version" yaml:"version"`
	MultiChunk bool        `json:"multi_chunk" yaml:"multi_chunk"`
	Entries    []vpkRecord `json:"entries" yaml:"entries"`
}

// vpkRecord is one listed entry.
type vpkRecord struct {
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	CRC32  uint32 `json:"crc32" yaml:"crc32"`
	Chunk  uint16 `json:"chunk" yaml:"chunk"`
	Source string `json:"source" yaml:"source"`
}

func (l vpkListing) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSIZE\tCRC32\tSOURCE")
	for _, e := range l.Entries {
		fmt.Fprintf(tw, "%s\t%d\t%08x\t%s\n", e.Path, e.Size, e.CRC32, e.Source)
	}

	return tw.Flush()
}

func vpkListCmd(s ioStreams, args []string) error {
	var (
		common commonFlags
		sel    selectFlags
	)

	fs := newFlagSet("vpk list", s.stderr)
	common.register(fs, formatText)
	sel.register(fs)
	pos, err := parseArgs(fs, args, 1, 1, "<archive_dir.vpk>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	a, err := vpk.OpenFile(pos[0])
	if err != nil {
		return err
	}

	entries, err := a.Select(sel.options())
	if err != nil {
		return err
	}

	env.logger.Debug("vpk opened",
		"archive", pos[0],
		"version", a.Version(),
		"entries", a.Len(),
		"selected", len(entries))

	out := vpkListing{
		Archive:    a.Name(),
		Version:    a.Version(),
		MultiChunk: a.MultiChunk(),
		Entries:    make([]vpkRecord, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, vpkRecord{
			Path:   e.CleanPath(),
			Size:   e.Length(),
			CRC32:  e.CRC32,
			Chunk:  e.ChunkIndex,
			Source: e.Source,
		})
	}

	return writeOutput(s.stdout, common.format, out)
}

func vpkCatCmd(s ioStreams, args []string) error {
	var (
		common commonFlags
		verify bool
	)

	fs := newFlagSet("vpk cat", s.stderr)
	common.register(fs, formatText)
	fs.BoolVar(&verify, "verify", false, "check CRC32 while reading")
	pos, err := parseArgs(fs, args, 2, 2, "<archive_dir.vpk> <entry>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	a, err := vpk.OpenFileWithOptions(pos[0], vpk.Options{VerifyCRC: verify || env.cfg.Extract.VerifyCRC})
	if err != nil {
		return err
	}

	n, err := a.WriteEntryTo(s.stdout, pos[1])
	if err != nil {
		return err
	}

	env.logger.Debug("entry written", "entry", pos[1], "bytes", n)
	return nil
}

func vpkExtractCmd(s ioStreams, args []string) error {
	var (
		common   commonFlags
		sel      selectFlags
		workers  int
		verify   bool
		rawNames bool
		mode     string
	)

	fs := newFlagSet("vpk extract", s.stderr)
	common.register(fs, formatText)
	sel.register(fs)
	fs.IntVarP(&workers, "workers", "j", 0, "extraction workers (default: config or GOMAXPROCS)")
	fs.BoolVar(&verify, "verify", false, "check CRC32 of every entry")
	fs.BoolVar(&rawNames, "raw-names", false, "keep archive names without sanitization")
	fs.StringVar(&mode, "mode", string(vpk.ExtractFileModeAuto), "file mode: auto, truncate, create_only")
	pos, err := parseArgs(fs, args, 2, 2, "<archive_dir.vpk> <output_dir>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	fileMode := vpk.ExtractFileMode(mode)
	switch fileMode {
	case vpk.ExtractFileModeAuto, vpk.ExtractFileModeTruncate, vpk.ExtractFileModeCreateOnly:
	default:
		return fmt.Errorf("invalid --mode %q", mode)
	}

	if workers == 0 {
		workers = env.cfg.Extract.Workers
	}

	a, err := vpk.OpenFile(pos[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var (
		files int
		total int64
	)
	opts := vpk.ExtractOptions{
		Select:     sel.options(),
		MaxWorkers: workers,
		RawNames:   rawNames,
		VerifyCRC:  verify || env.cfg.Extract.VerifyCRC,
		FileMode:   fileMode,
		OnEntryDone: func(e vpk.Entry, written int64, outputPath string) {
			env.logger.Debug("extracted", "entry", e.CleanPath(), "bytes", written, "path", outputPath)
		},
	}

	entries, err := a.Select(opts.Select)
	if err != nil {
		return err
	}
	for _, e := range entries {
		files++
		total += e.Length()
	}

	if err := a.Extract(ctx, pos[1], opts); err != nil {
		return err
	}

	env.logger.Info("extract done", "archive", pos[0], "files", files, "bytes", total, "output", pos[1])
	return nil
}
