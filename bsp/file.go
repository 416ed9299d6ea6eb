// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/woozymasta/srcfmt/buffer"
	"github.com/woozymasta/srcfmt/keyvalues"
)

// Magic is the 4-byte tag at offset 0.
const Magic = "VBSP"

// Materialized value names accepted by Get.
const (
	ValueEntities = "entities"
	ValuePakfile  = "pakfile"
)

// Options configures lump materialization.
type Options struct {
	// Decompressor decodes compressed lumps; nil means ExecDecompressor with default path.
	Decompressor Decompressor `json:"-" yaml:"-"`
	// Logger receives debug events; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// KeyValues configures entity decoding.
	KeyValues keyvalues.DecodeOptions `json:"-" yaml:"-"`
	// TempDir holds pakfile temporary files; empty means os.TempDir.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Decompressor == nil {
		opts.Decompressor = ExecDecompressor{Path: DefaultDecompressorPath, Logger: opts.Logger}
	}
}

// File is a parsed map container. The lump table is read at construction;
// entity and pakfile lumps are materialized on first access and cached.
// File is safe for concurrent use.
type File struct {
	// cur reads lump payloads; guarded by mu.
	cur *buffer.Cursor
	// materialized caches decoded lumps by value name; guarded by mu.
	materialized map[string]any
	// opts are fixed at construction.
	opts Options
	// lumps is the fixed lump table.
	lumps [LumpCount]Lump
	// mu guards cursor position, cache and closed state.
	mu sync.Mutex
	// version is the header version.
	version uint32
	// revision is the map revision after the lump table, zero when absent.
	revision uint32
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a map file by path.
func Open(path string, opts Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open BSP: %w", err)
	}

	bf, err := NewReader(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return bf, nil
}

// NewReader parses the header from a seekable stream. When rs is an io.Closer,
// File.Close closes it.
func NewReader(rs io.ReadSeeker, opts Options) (*File, error) {
	cur, err := buffer.NewStream(rs)
	if err != nil {
		return nil, fmt.Errorf("open BSP: %w", err)
	}

	return newFile(cur, opts)
}

// NewBytes parses an in-memory map.
func NewBytes(data []byte, opts Options) (*File, error) {
	return newFile(buffer.NewBytes(data), opts)
}

// newFile reads the header and the full lump table.
func newFile(cur *buffer.Cursor, opts Options) (*File, error) {
	opts.applyDefaults()

	f := &File{
		cur:          cur,
		opts:         opts,
		materialized: make(map[string]any),
	}
	if err := f.parseHeader(); err != nil {
		return nil, err
	}

	return f, nil
}

// parseHeader validates magic and reads 64 descriptors.
func (f *File) parseHeader() error {
	magic, err := f.cur.Next(len(Magic))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if string(magic) != Magic {
		return fmt.Errorf("%w: got %q", ErrInvalidHeader, magic)
	}

	if f.version, err = f.cur.Uint32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	for i := range f.lumps {
		l := Lump{Index: i, Name: LumpNames[i]}
		if l.Offset, err = f.cur.Uint32(); err != nil {
			return fmt.Errorf("read lump %d: %w", i, err)
		}
		if l.Length, err = f.cur.Uint32(); err != nil {
			return fmt.Errorf("read lump %d: %w", i, err)
		}
		if l.Version, err = f.cur.Uint32(); err != nil {
			return fmt.Errorf("read lump %d: %w", i, err)
		}

		fourCC, err := f.cur.Next(4)
		if err != nil {
			return fmt.Errorf("read lump %d: %w", i, err)
		}
		copy(l.FourCC[:], fourCC)

		f.lumps[i] = l
	}

	if f.cur.Remaining() >= 4 {
		f.revision, _ = f.cur.Uint32()
	}

	return nil
}

// Version returns the header version.
func (f *File) Version() uint32 {
	return f.version
}

// Revision returns the map revision stored after the lump table.
func (f *File) Revision() uint32 {
	return f.revision
}

// Lumps returns a copy of the lump table.
func (f *File) Lumps() []Lump {
	out := make([]Lump, LumpCount)
	copy(out, f.lumps[:])
	return out
}

// Lump returns the descriptor at index.
func (f *File) Lump(index int) (Lump, error) {
	if index < 0 || index >= LumpCount {
		return Lump{}, fmt.Errorf("%w: %d", ErrLumpOutOfBounds, index)
	}

	return f.lumps[index], nil
}

// LumpByName returns the descriptor for a slot name such as "pakfile".
func (f *File) LumpByName(name string) (Lump, error) {
	index, ok := LumpIndex(name)
	if !ok {
		return Lump{}, fmt.Errorf("%w: %q", ErrUnknownLump, name)
	}

	return f.lumps[index], nil
}

// ReadLump returns the stored payload of a lump without decoding it.
func (f *File) ReadLump(index int) ([]byte, error) {
	l, err := f.Lump(index)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.lumpCursor(l)
	if err != nil {
		return nil, err
	}

	return cur.Bytes()
}

// LumpCompressed reports whether the stored payload of a lump is LZMA-compressed.
func (f *File) LumpCompressed(index int) (bool, error) {
	l, err := f.Lump(index)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.lumpCursor(l)
	if err != nil {
		return false, err
	}

	return IsCompressed(cur), nil
}

// Get returns a materialized value by name: "entities" gives []keyvalues.Map,
// "pakfile" gives *Pakfile, any other lump name gives its raw []byte.
func (f *File) Get(name string) (any, error) {
	switch strings.ToLower(name) {
	case ValueEntities:
		return f.Entities()
	case ValuePakfile:
		return f.Pakfile()
	}

	index, ok := LumpIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLump, name)
	}

	return f.ReadLump(index)
}

// Entities returns the decoded entity records in lump order.
func (f *File) Entities() ([]keyvalues.Map, error) {
	return f.EntitiesContext(context.Background())
}

// EntitiesContext is Entities with a context passed to the decompressor.
func (f *File) EntitiesContext(ctx context.Context) ([]keyvalues.Map, error) {
	v, err := f.materialize(ValueEntities, func() (any, error) {
		return f.loadEntities(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]keyvalues.Map), nil
}

// EntitiesByClass returns entities whose "classname" equals classname, ignoring case.
func (f *File) EntitiesByClass(classname string) ([]keyvalues.Map, error) {
	entities, err := f.Entities()
	if err != nil {
		return nil, err
	}

	var out []keyvalues.Map
	for _, e := range entities {
		if cls, ok := e.GetString("classname"); ok && strings.EqualFold(cls, classname) {
			out = append(out, e)
		}
	}

	return out, nil
}

// Pakfile copies the embedded archive to a temporary file on first call.
// The file is removed by Close.
func (f *File) Pakfile() (*Pakfile, error) {
	v, err := f.materialize(ValuePakfile, f.loadPakfile)
	if err != nil {
		return nil, err
	}

	return v.(*Pakfile), nil
}

// Close removes pakfile temporary data and closes the source when owned.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	if p, ok := f.materialized[ValuePakfile].(*Pakfile); ok {
		errs = append(errs, p.Close())
	}

	f.materialized = nil
	errs = append(errs, f.cur.Close())
	return errors.Join(errs...)
}

// materialize computes a value once under the file lock. Failures are not cached.
func (f *File) materialize(name string, load func() (any, error)) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	if v, ok := f.materialized[name]; ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	f.materialized[name] = v
	return v, nil
}

// lumpCursor seeks to a lump and returns a cursor over its payload. Caller holds mu.
func (f *File) lumpCursor(l Lump) (*buffer.Cursor, error) {
	if f.closed {
		return nil, ErrClosed
	}

	end := int64(l.Offset) + int64(l.Length)
	if end > f.cur.Limit() {
		return nil, fmt.Errorf("%w: lump %s ends at %d, file has %d bytes", ErrTruncatedPayload, l.Name, end, f.cur.Limit())
	}

	if err := f.cur.Seek(int64(l.Offset)); err != nil {
		return nil, err
	}

	return f.cur.Slice(int(l.Length))
}

// loadEntities reads, optionally decompresses and splits the entity lump. Caller holds mu.
func (f *File) loadEntities(ctx context.Context) (any, error) {
	l := f.lumps[LumpEntities]
	cur, err := f.lumpCursor(l)
	if err != nil {
		return nil, err
	}

	var text []byte
	if IsCompressed(cur) {
		f.opts.Logger.Debug("decompressing entity lump", "length", l.Length)
		if text, err = DecompressLump(ctx, cur, f.opts.Decompressor); err != nil {
			return nil, fmt.Errorf("entity lump: %w", err)
		}
	} else if text, err = cur.Bytes(); err != nil {
		return nil, err
	}

	entities, err := ParseEntities(string(text), f.opts.KeyValues)
	if err != nil {
		return nil, err
	}

	f.opts.Logger.Debug("materialized entity lump", "entities", len(entities))
	return entities, nil
}

// loadPakfile copies the pakfile lump to a temporary file. Caller holds mu.
func (f *File) loadPakfile() (any, error) {
	l := f.lumps[LumpPakfile]
	if l.Empty() {
		return nil, ErrNoPakfile
	}

	end := int64(l.Offset) + int64(l.Length)
	if end > f.cur.Limit() {
		return nil, fmt.Errorf("%w: pakfile ends at %d, file has %d bytes", ErrTruncatedPayload, end, f.cur.Limit())
	}

	if err := f.cur.Seek(int64(l.Offset)); err != nil {
		return nil, err
	}

	p, err := writePakfile(f.cur, int64(l.Length), f.opts.TempDir)
	if err != nil {
		return nil, err
	}

	f.opts.Logger.Debug("materialized pakfile", "path", p.Path, "size", p.Size)
	return p, nil
}

// ParseEntities splits entity lump text on "}" and decodes every fragment that starts with "{".
func ParseEntities(text string, opts keyvalues.DecodeOptions) ([]keyvalues.Map, error) {
	var out []keyvalues.Map
	for _, frag := range strings.Split(text, "}") {
		frag = strings.TrimSpace(frag)
		if !strings.HasPrefix(frag, "{") {
			continue
		}

		doc, err := keyvalues.Decode("\"Entity\"\n"+frag+"\n}", opts)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", len(out), err)
		}

		entity, _ := doc.GetMap("Entity")
		out = append(out, entity)
	}

	return out, nil
}
