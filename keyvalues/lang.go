// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import "strings"

// Translator resolves "#token" string values of a document against a language token table.
type Translator struct {
	tokens Map
	data   Map
}

// NewTranslator returns a translator over data using tokens for substitution.
func NewTranslator(tokens Map, data Map) *Translator {
	return &Translator{tokens: tokens, data: data}
}

// LanguageTokens returns the "lang" > "Tokens" level of a decoded language file.
func LanguageTokens(lang Map) (Map, bool) {
	root, ok := lang.LookupFold("lang")
	if !ok {
		return nil, false
	}

	rootMap, ok := asMap(root)
	if !ok {
		return nil, false
	}

	tokens, ok := rootMap.LookupFold("Tokens")
	if !ok {
		return nil, false
	}

	return asMap(tokens)
}

// Get returns the value under a dot-separated path, translating it when it is a "#token" string.
func (t *Translator) Get(path string) (any, bool) {
	v, ok := t.data.Lookup(path)
	if !ok {
		return nil, false
	}

	return t.translateValue(v), true
}

// Translate returns a deep copy of the document with every "#token" string substituted.
func (t *Translator) Translate() Map {
	return t.translateMap(t.data)
}

// translateMap copies one level applying substitution.
func (t *Translator) translateMap(m Map) Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = t.translateValue(v)
	}

	return out
}

// translateValue substitutes one value; unknown tokens are kept as-is.
func (t *Translator) translateValue(v any) any {
	if child, ok := asMap(v); ok {
		return t.translateMap(child)
	}

	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "#") {
		return v
	}

	if tr, ok := t.tokens.LookupFold(s[1:]); ok {
		if text, ok := tr.(string); ok {
			return text
		}
	}

	return s
}
