// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   Entry
}

// Extract writes selected entries to dstDir. Extraction is parallelized by
// MaxWorkers; every worker keeps its own chunk file handles. On failure it
// returns the first encountered error.
func (a *Archive) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts.applyDefaults()

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	entries, err := a.Select(opts.Select)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(entries, opts.RawNames)
	if err != nil {
		return err
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	verify := opts.VerifyCRC || a.opts.VerifyCRC
	taskCh := make(chan extractWorkItem, len(workItems))
	errCh := make(chan error, len(workItems))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			handles := make(chunkHandles)
			defer handles.closeAll()

			copyBuf := make([]byte, copyBufferSize)
			for task := range taskCh {
				err := a.extractPreparedEntry(ctx, dstRootAbs, task, opts, handles, copyBuf, verify)
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	for _, task := range workItems {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return ctx.Err()
		case taskCh <- task:
		}
	}

	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}

	if first == nil {
		first = ctx.Err()
	}

	return first
}

// chunkHandles caches open storage files of one worker by storage name.
type chunkHandles map[string]io.ReadSeekCloser

// get returns a cached handle for name, opening it on first use.
func (h chunkHandles) get(storage Storage, name string) (io.ReadSeekCloser, error) {
	if f, ok := h[name]; ok {
		return f, nil
	}

	f, err := storage.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open chunk %s: %w", name, err)
	}

	h[name] = f
	return f, nil
}

// closeAll closes every cached handle.
func (h chunkHandles) closeAll() {
	for name, f := range h {
		_ = f.Close()
		delete(h, name)
	}
}

// prepareExtractWorkItems validates selected entries and prepares relative fs paths.
func prepareExtractWorkItems(entries []Entry, rawNames bool) ([]extractWorkItem, error) {
	var sanitized []string
	if !rawNames {
		var err error
		if sanitized, err = sanitizeExtractPaths(entries); err != nil {
			return nil, err
		}
	}

	workItems := make([]extractWorkItem, 0, len(entries))
	for i, entry := range entries {
		entryPath := entry.CleanPath()
		if sanitized != nil {
			entryPath = sanitized[i]
		}

		normalizedPath, err := normalizeExtractEntryPath(entryPath)
		if err != nil {
			return nil, fmt.Errorf("normalize entry path %s: %w", entry.Path(), err)
		}

		relPath := filepath.FromSlash(normalizedPath)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			entry:   entry,
			relPath: relPath,
			relDir:  relDir,
		})
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		if _, exists := seen[dirPath]; exists {
			continue
		}

		seen[dirPath] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one prepared work item to destination root.
func (a *Archive) extractPreparedEntry(
	ctx context.Context,
	dstRootAbs string,
	task extractWorkItem,
	opts ExtractOptions,
	handles chunkHandles,
	copyBuf []byte,
	verify bool,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	outPath := filepath.Join(dstRootAbs, task.relPath)
	if rel, err := filepath.Rel(dstRootAbs, outPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrExtractPathOutsideRoot, task.entry.Path())
	}

	var src io.ReadSeeker
	if task.entry.Size > 0 {
		f, err := handles.get(a.storage, task.entry.Source)
		if err != nil {
			return err
		}

		if _, err := f.Seek(task.entry.DataOffset, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s in %s: %w", task.entry.Path(), task.entry.Source, err)
		}

		src = f
	}

	file, err := openExtractFile(outPath, opts.FileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.entry.Path(), err)
	}

	written, copyErr := copyEntry(file, &task.entry, src, copyBuf, verify)
	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.entry.Path(), closeErr)
	}

	if opts.OnEntryDone != nil {
		opts.OnEntryDone(task.entry, written, outPath)
	}

	return nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, nil
		}

		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// normalizeExtractEntryPath normalizes entry path and rejects absolute/traversal inputs.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	c := path[0] | 0x20
	return c >= 'a' && c <= 'z' && path[1] == ':' && path[2] == '/'
}
