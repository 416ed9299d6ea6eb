// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/woozymasta/srcfmt/bsp"
	"github.com/woozymasta/srcfmt/keyvalues"
)

// bspInfo is the output of bsp info.
type bspInfo struct {
	Map      string    `json:"map" yaml:"map"`
	Lumps    []bspLump `json:"lumps" yaml:"lumps"`
	Version  uint32    `json:"version" yaml:"version"`
	Revision uint32    `json:"revision" yaml:"revision"`
}

// bspLump is one non-empty lump descriptor.
type bspLump struct {
	Name       string `json:"name" yaml:"name"`
	Index      int    `json:"index" yaml:"index"`
	Offset     uint32 `json:"offset" yaml:"offset"`
	Length     uint32 `json:"length" yaml:"length"`
	Version    uint32 `json:"version" yaml:"version"`
	Compressed bool   `json:"compressed" yaml:"compressed"`
}

func (i bspInfo) writeText(w io.Writer) error {
	fmt.Fprintf(w, "map: %s\nversion: %d\nrevision: %d\n\n", i.Map, i.Version, i.Revision)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tOFFSET\tLENGTH\tVERSION\tLZMA")
	for _, l := range i.Lumps {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%v\n", l.Index, l.Name, l.Offset, l.Length, l.Version, l.Compressed)
	}

	return tw.Flush()
}

// openBSP opens path with options built from config.
func openBSP(e *cmdEnv, path string) (*bsp.File, error) {
	return bsp.Open(path, bsp.Options{
		Decompressor: e.cfg.decompressor(e.logger),
		Logger:       e.logger,
		KeyValues:    keyvalues.DecodeOptions{Conditions: e.cfg.conditions(nil)},
	})
}

func bspInfoCmd(s ioStreams, args []string) error {
	var common commonFlags

	fs := newFlagSet("bsp info", s.stderr)
	common.register(fs, formatText)
	pos, err := parseArgs(fs, args, 1, 1, "<map.bsp>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	f, err := openBSP(env, pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	out := bspInfo{Map: pos[0], Version: f.Version(), Revision: f.Revision()}
	for _, l := range f.Lumps() {
		if l.Empty() {
			continue
		}

		lump := bspLump{
			Name:    l.Name,
			Index:   l.Index,
			Offset:  l.Offset,
			Length:  l.Length,
			Version: l.Version,
		}
		if lump.Compressed, err = f.LumpCompressed(l.Index); err != nil {
			return err
		}

		out.Lumps = append(out.Lumps, lump)
	}

	return writeOutput(s.stdout, common.format, out)
}

func bspEntitiesCmd(s ioStreams, args []string) error {
	var (
		common    commonFlags
		classname string
	)

	fs := newFlagSet("bsp entities", s.stderr)
	common.register(fs, formatJSON)
	fs.StringVar(&classname, "class", "", "keep entities with this classname")
	pos, err := parseArgs(fs, args, 1, 1, "<map.bsp>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	f, err := openBSP(env, pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	ctx, stop := signalContext()
	defer stop()

	entities, err := f.EntitiesContext(ctx)
	if err != nil {
		return err
	}

	if classname != "" {
		entities, err = f.EntitiesByClass(classname)
		if err != nil {
			return err
		}
	}

	env.logger.Debug("entities decoded", "map", pos[0], "count", len(entities))
	return writeOutput(s.stdout, common.format, entities)
}

// pakfileListing is the output of bsp pakfile --list.
type pakfileListing struct {
	Files []pakfileRecord `json:"files" yaml:"files"`
}

type pakfileRecord struct {
	Name string `json:"name" yaml:"name"`
	Size uint64 `json:"size" yaml:"size"`
}

func (l pakfileListing) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE")
	for _, f := range l.Files {
		fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.Size)
	}

	return tw.Flush()
}

func bspPakfileCmd(s ioStreams, args []string) error {
	var common commonFlags

	fs := newFlagSet("bsp pakfile", s.stderr)
	common.register(fs, formatText)
	pos, err := parseArgs(fs, args, 1, 2, "<map.bsp> [out.zip]")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	f, err := openBSP(env, pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	pak, err := f.Pakfile()
	if err != nil {
		return err
	}

	if len(pos) == 2 {
		if err := copyFile(pak.Path, pos[1]); err != nil {
			return err
		}

		env.logger.Info("pakfile written", "map", pos[0], "output", pos[1], "bytes", pak.Size)
		return nil
	}

	zr, err := pak.Open()
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()

	var out pakfileListing
	for _, zf := range zr.File {
		out.Files = append(out.Files, pakfileRecord{Name: zf.Name, Size: zf.UncompressedSize64})
	}

	return writeOutput(s.stdout, common.format, out)
}

// copyFile copies src to a new or truncated dst.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
