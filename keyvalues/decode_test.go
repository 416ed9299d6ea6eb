// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
	"unicode/utf16"
)

func TestDecode_Entity(t *testing.T) {
	t.Parallel()

	got, err := Decode("\"Entity\"\n{\n\"classname\" \"info_player_start\"\n}\n", DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Map{"Entity": Map{"classname": "info_player_start"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Decode=%#v, want %#v", got, want)
	}
}

func TestDecode_ConditionalValue(t *testing.T) {
	t.Parallel()

	doc := "\"key\" \"value\" [$FLAG]\n\"always\" \"1\"\n"

	on, err := Decode(doc, DecodeOptions{Conditions: Conditions{"FLAG": Bool(true)}})
	if err != nil {
		t.Fatalf("Decode FLAG=true: %v", err)
	}
	if v, ok := on.GetString("key"); !ok || v != "value" {
		t.Fatalf("FLAG=true: key=%q present=%v", v, ok)
	}

	off, err := Decode(doc, DecodeOptions{Conditions: Conditions{"FLAG": Bool(false)}})
	if err != nil {
		t.Fatalf("Decode FLAG=false: %v", err)
	}
	if _, ok := off["key"]; ok {
		t.Fatal("FLAG=false: key must be absent")
	}
	if v, _ := off.GetString("always"); v != "1" {
		t.Fatalf("FLAG=false: always=%q, want 1", v)
	}
}

func TestDecode_FalseBlockKeepsNesting(t *testing.T) {
	t.Parallel()

	doc := `"root"
{
	"skip" [$X360]
	{
		"inner" "x"
		"deeper"
		{
			"y" "z"
		}
	}
	"kept" "yes"
}
"after" "ok"
`
	got, err := Decode(doc, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Map{
		"root":  Map{"kept": "yes"},
		"after": "ok",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Decode=%#v, want %#v", got, want)
	}
}

func TestDecode_DefaultConditionsEnableWin32(t *testing.T) {
	t.Parallel()

	doc := "\"a\" \"1\" [$WIN32]\n\"b\" \"2\" [!$WIN32]\n\"c\" \"3\" [!$X360]\n\"d\" \"4\" [$OSX||$WIN32]\n"
	got, err := Decode(doc, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Map{"a": "1", "c": "3", "d": "4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Decode=%#v, want %#v", got, want)
	}
}

func TestDecode_ConditionsAreLazy(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	counted := func(name string, v bool) Condition {
		return func() bool {
			calls[name]++
			return v
		}
	}

	doc := "\"a\" \"1\" [$USED]\n\"b\" \"2\"\n"
	_, err := Decode(doc, DecodeOptions{Conditions: Conditions{
		"USED":   counted("USED", true),
		"UNUSED": counted("UNUSED", true),
	}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if calls["USED"] != 1 || calls["UNUSED"] != 0 {
		t.Fatalf("calls=%v, want USED=1 UNUSED=0", calls)
	}
}

func TestDecode_MultilineValue(t *testing.T) {
	t.Parallel()

	doc := "\"desc\" \"line one\nline two\"\n\"next\" \"v\"\n"
	got, err := Decode(doc, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if v, _ := got.GetString("desc"); v != "line one\nline two" {
		t.Fatalf("desc=%q", v)
	}
	if v, _ := got.GetString("next"); v != "v" {
		t.Fatalf("next=%q", v)
	}
}

func TestDecode_UnterminatedValue(t *testing.T) {
	t.Parallel()

	_, err := Decode("\"desc\" \"never closed\n", DecodeOptions{})
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("err=%v, want ErrSyntax", err)
	}
}

func TestDecode_EscapesKeptVerbatim(t *testing.T) {
	t.Parallel()

	got, err := Decode(`"path" "a\"b\\c\n"`, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if v, _ := got.GetString("path"); v != `a\"b\\c\n` {
		t.Fatalf("path=%q", v)
	}
}

func TestDecode_CommentsBOMAndDuplicates(t *testing.T) {
	t.Parallel()

	doc := "\uFEFF// header comment\r\n\"k\" \"first\"\r\n   // indented comment\r\n\"k\" \"second\" // trailing\r\n"
	got, err := Decode(doc, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(got, Map{"k": "second"}) {
		t.Fatalf("Decode=%#v", got)
	}
}

func TestDecode_BraceOnKeyLine(t *testing.T) {
	t.Parallel()

	got, err := Decode("\"outer\" {\n\"inner\" \"v\"\n}\n", DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if v, ok := got.Lookup("outer.inner"); !ok || v != "v" {
		t.Fatalf("outer.inner=%v ok=%v", v, ok)
	}
}

func TestDecode_InlineBlock(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc  string
		want Map
	}{
		"single line": {
			doc:  `"a" { "b" "c" }`,
			want: Map{"a": Map{"b": "c"}},
		},
		"nested and continued": {
			doc:  "\"a\" { \"b\" { \"c\" \"d\" } \"e\" \"f\"\n\"g\" \"h\" }\n\"i\" \"j\" // tail\n",
			want: Map{"a": Map{"b": Map{"c": "d"}, "e": "f", "g": "h"}, "i": "j"},
		},
		"brace after tag": {
			doc:  `"a" [$WIN32] { "b" "c" } "x" "y"`,
			want: Map{"a": Map{"b": "c"}, "x": "y"},
		},
		"excluded block": {
			doc:  `"a" [$X360] { "b" "c" } "x" "y"`,
			want: Map{"x": "y"},
		},
		"brace on next line": {
			doc:  "\"a\"\n{ \"b\" \"c\" }\n",
			want: Map{"a": Map{"b": "c"}},
		},
	}

	for name, tc := range cases {
		got, err := Decode(tc.doc, DecodeOptions{})
		if err != nil {
			t.Errorf("%s: Decode: %v", name, err)
			continue
		}

		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: Decode=%#v, want %#v", name, got, tc.want)
		}
	}
}

func TestDecode_SyntaxErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"key without block": "\"key\"\n\"other\" \"v\"\n",
		"key at eof":        "\"key\"\n",
		"stray brace":       "{\n}\n",
		"unquoted token":    "key value\n",
		"unterminated key":  "\"key\n",
	}

	for name, doc := range cases {
		if _, err := Decode(doc, DecodeOptions{}); !errors.Is(err, ErrSyntax) {
			t.Errorf("%s: err=%v, want ErrSyntax", name, err)
		}
	}
}

func TestDecode_UnbalancedNesting(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unclosed block":  "\"a\"\n{\n\"b\" \"c\"\n",
		"extra close":     "\"a\" \"b\"\n}\n",
		"nested unclosed": "\"a\"\n{\n\"b\"\n{\n}\n",
	}

	for name, doc := range cases {
		if _, err := Decode(doc, DecodeOptions{}); !errors.Is(err, ErrUnbalancedNesting) {
			t.Errorf("%s: err=%v, want ErrUnbalancedNesting", name, err)
		}
	}
}

func TestDecodeReader_UTF16WithBOM(t *testing.T) {
	t.Parallel()

	doc := "\"lang\"\n{\n\"Language\" \"English\"\n\"Tokens\"\n{\n\"Greeting\" \"Hello\"\n}\n}\n"
	var raw bytes.Buffer
	raw.Write([]byte{0xFF, 0xFE})
	for _, u := range utf16.Encode([]rune(doc)) {
		_ = binary.Write(&raw, binary.LittleEndian, u)
	}

	got, err := DecodeReader(&raw, DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeReader: %v", err)
	}

	if v, ok := got.Lookup("lang.Tokens.Greeting"); !ok || v != "Hello" {
		t.Fatalf("lang.Tokens.Greeting=%v ok=%v", v, ok)
	}
}

func TestConditions_Evaluate(t *testing.T) {
	t.Parallel()

	c := Conditions{"WIN32": Bool(true), "X360": Bool(false), "nil": nil}
	cases := map[string]bool{
		"$WIN32":               true,
		"$win32":               true,
		"!$WIN32":              false,
		"$X360":                false,
		"!$X360":               true,
		"$MISSING":             false,
		"$nil":                 false,
		"$X360||$WIN32":        true,
		"$WIN32&&$X360":        false,
		"$WIN32&&!$X360":       true,
		"$X360&&$X360||$WIN32": true,
		"":                     false,
	}

	for expr, want := range cases {
		if got := c.Evaluate(expr); got != want {
			t.Errorf("Evaluate(%q)=%v, want %v", expr, got, want)
		}
	}
}
