// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

/*
Package keyvalues decodes and encodes the nested quoted key/value text format
used for engine configuration, language files and map entity data.

	"Entity"
	{
	    "classname" "info_player_start"
	    "origin"    "0 0 64" [$WIN32]
	}

Decoding produces a Map whose values are either string or Map. Later
duplicate keys at the same level overwrite earlier ones. Escape sequences
inside quoted strings are kept verbatim.

A trailing [$TOKEN] tag makes a statement conditional. Tags are evaluated
against DecodeOptions.Conditions; when no conditions are given,
DefaultConditions enables WIN32. A false tag drops the statement and, for
block keys, the whole nested block while still keeping braces balanced.
Negation and simple boolean combinations are accepted:

	[!$X360]  [$WIN32||$OSX]  [$WIN32&&!$X360]

Encoding is the structural inverse of decoding; keys are written in sorted
order so output is deterministic.
*/
package keyvalues
