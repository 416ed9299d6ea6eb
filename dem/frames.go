// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package dem

import (
	"errors"
	"fmt"

	"github.com/woozymasta/srcfmt/buffer"
)

// FrameType is the command byte that starts every frame.
type FrameType uint8

// Demo frame commands.
const (
	FrameSignon       FrameType = 1
	FramePacket       FrameType = 2
	FrameSyncTick     FrameType = 3
	FrameConsoleCmd   FrameType = 4
	FrameUserCmd      FrameType = 5
	FrameDataTables   FrameType = 6
	FrameStop         FrameType = 7
	FrameStringTables FrameType = 8
)

// Fixed-size frame prefixes skipped before the length-prefixed payload.
const (
	// packetInfoSize is the command info block of signon and packet frames.
	packetInfoSize = 0x54
	// userCmdSeqSize is the outgoing sequence number of user command frames.
	userCmdSeqSize = 4
)

var frameNames = map[FrameType]string{
	FrameSignon:       "dem_signon",
	FramePacket:       "dem_packet",
	FrameSyncTick:     "dem_synctick",
	FrameConsoleCmd:   "dem_consolecmd",
	FrameUserCmd:      "dem_usercmd",
	FrameDataTables:   "dem_datatables",
	FrameStop:         "dem_stop",
	FrameStringTables: "dem_stringtables",
}

// String returns the engine name of the command.
func (t FrameType) String() string {
	if name, ok := frameNames[t]; ok {
		return name
	}

	return fmt.Sprintf("dem_unknown(%d)", uint8(t))
}

// FrameStats summarizes a frame scan.
type FrameStats struct {
	// Counts holds frames per command, the stop frame included.
	Counts map[FrameType]int `json:"counts" yaml:"counts"`
	// Frames is the total number of frames read.
	Frames int `json:"frames" yaml:"frames"`
	// LastTick is the tick of the stop frame.
	LastTick uint32 `json:"last_tick" yaml:"last_tick"`
}

// ScanFrames walks frames from the current position until the stop command.
// Payloads are skipped, not decoded.
func (d *Demo) ScanFrames() (FrameStats, error) {
	stats := FrameStats{Counts: make(map[FrameType]int)}

	for {
		b, err := d.cur.Uint8()
		if err != nil {
			return stats, frameError(stats.Frames, err)
		}

		t := FrameType(b)
		tick, err := d.cur.Uint32()
		if err != nil {
			return stats, frameError(stats.Frames, err)
		}

		stats.Counts[t]++
		stats.Frames++
		stats.LastTick = tick

		if t == FrameStop {
			return stats, nil
		}

		if err := skipFrame(d.cur, t); err != nil {
			return stats, frameError(stats.Frames, err)
		}
	}
}

// skipFrame skips the body of one non-stop frame.
func skipFrame(cur *buffer.Cursor, t FrameType) error {
	switch t {
	case FrameSyncTick:
		return nil
	case FrameSignon, FramePacket:
		if err := cur.Skip(packetInfoSize); err != nil {
			return err
		}
	case FrameUserCmd:
		if err := cur.Skip(userCmdSeqSize); err != nil {
			return err
		}
	}

	n, err := cur.Uint32()
	if err != nil {
		return err
	}

	return cur.Skip(int64(n))
}

// frameError wraps underflow as ErrTruncatedFrame.
func frameError(frame int, err error) error {
	if errors.Is(err, buffer.ErrUnderflow) {
		return fmt.Errorf("%w: frame %d: %w", ErrTruncatedFrame, frame, err)
	}

	return fmt.Errorf("frame %d: %w", frame, err)
}
