// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

// ListEntries opens a VPK directory file and returns entry metadata without payload reads.
func ListEntries(filePath string) ([]Entry, error) {
	return ListEntriesWithOptions(filePath, SelectOptions{})
}

// ListEntriesWithOptions opens a VPK directory file and returns entries passing opts.
func ListEntriesWithOptions(filePath string, opts SelectOptions) ([]Entry, error) {
	a, err := OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	return a.Select(opts)
}
