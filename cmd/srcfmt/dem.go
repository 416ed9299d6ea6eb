// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"fmt"
	"io"

	"github.com/woozymasta/srcfmt/dem"
)

// demInfo is the output of dem info.
type demInfo struct {
	Header dem.Header      `json:"header" yaml:"header"`
	Frames *demFrameReport `json:"frames,omitempty" yaml:"frames,omitempty"`
}

// demFrameReport is FrameStats keyed by command name.
type demFrameReport struct {
	Counts   map[string]int `json:"counts" yaml:"counts"`
	Total    int            `json:"total" yaml:"total"`
	LastTick uint32         `json:"last_tick" yaml:"last_tick"`
}

func (i demInfo) writeText(w io.Writer) error {
	h := i.Header
	fmt.Fprintf(w, "server:    %s\n", h.ServerName)
	fmt.Fprintf(w, "client:    %s\n", h.ClientName)
	fmt.Fprintf(w, "map:       %s\n", h.MapName)
	fmt.Fprintf(w, "game:      %s\n", h.GameDirectory)
	fmt.Fprintf(w, "protocol:  demo %d, network %d\n", h.DemoProtocol, h.NetworkProtocol)
	fmt.Fprintf(w, "length:    %.2fs, %d ticks, %d frames\n", h.PlaybackTime, h.Ticks, h.Frames)
	_, err := fmt.Fprintf(w, "signon:    %d bytes\n", h.SignonLength)

	if i.Frames != nil && err == nil {
		_, err = fmt.Fprintf(w, "scanned:   %d frames, last tick %d\n", i.Frames.Total, i.Frames.LastTick)
	}

	return err
}

func demInfoCmd(s ioStreams, args []string) error {
	var (
		common commonFlags
		frames bool
	)

	fs := newFlagSet("dem info", s.stderr)
	common.register(fs, formatText)
	fs.BoolVar(&frames, "frames", false, "scan frames after the header")
	pos, err := parseArgs(fs, args, 1, 1, "<demo.dem>")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	d, err := dem.Open(pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	out := demInfo{Header: d.Header}
	if frames {
		stats, err := d.ScanFrames()
		if err != nil {
			return err
		}

		report := &demFrameReport{
			Counts:   make(map[string]int, len(stats.Counts)),
			Total:    stats.Frames,
			LastTick: stats.LastTick,
		}
		for t, n := range stats.Counts {
			report.Counts[t.String()] = n
		}

		out.Frames = report
		env.logger.Debug("frames scanned", "demo", pos[0], "frames", stats.Frames)
	}

	return writeOutput(s.stdout, common.format, out)
}
