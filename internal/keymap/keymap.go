package keymap

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Token is the logical identity of a keystroke or key click.
type Token string

// TokenSpace is the digits-class entry that renders as the space bar.
const TokenSpace Token = "space"

// ClassKind names one of the four disjoint classes of the table.
type ClassKind int

const (
	ClassDigits ClassKind = iota
	ClassConsonants
	ClassSymbols
	ClassVowels
)

var classNames = []string{"digits", "consonants", "symbols", "vowels"}

func (k ClassKind) String() string {
	if k < 0 || int(k) >= len(classNames) {
		return "unknown"
	}
	return classNames[k]
}

// ParseClassKind accepts a class name in any case, singular or plural.
func ParseClassKind(name string) (ClassKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range classNames {
		if normalized == candidate {
			return ClassKind(i), nil
		}
	}
	switch normalized {
	case "numbers", "digit":
		return ClassDigits, nil
	case "consonant":
		return ClassConsonants, nil
	case "symbol", "punctuation":
		return ClassSymbols, nil
	case "vowel":
		return ClassVowels, nil
	}
	return 0, &ConfigError{msg: fmt.Sprintf("unknown key class '%s'", name)}
}

// Entry binds one token to the glyph cluster it inserts.
type Entry struct {
	Token Token
	Glyph string
}

// Class is an ordered list of entries. The order is the on-screen order.
type Class struct {
	Kind    ClassKind
	Entries []Entry
}

func (c Class) clone() Class {
	entries := make([]Entry, len(c.Entries))
	copy(entries, c.Entries)
	return Class{Kind: c.Kind, Entries: entries}
}

// ConfigError reports a malformed key map. It is only ever returned while
// a table is being built.
type ConfigError struct {
	Token Token
	msg   string
}

func (e *ConfigError) Error() string { return "keymap: " + e.msg }

// NewConfigError builds a ConfigError about tok.
func NewConfigError(tok Token, format string, args ...any) *ConfigError {
	return &ConfigError{Token: tok, msg: fmt.Sprintf(format, args...)}
}

// Table is an immutable, validated key map.
type Table struct {
	classes []Class
	glyphs  map[Token]string
	kinds   map[Token]ClassKind
}

// New merges the classes into one lookup. Every token must be unique across
// all classes; the first collision is returned as a *ConfigError.
func New(classes ...Class) (*Table, error) {
	t := &Table{
		glyphs: make(map[Token]string),
		kinds:  make(map[Token]ClassKind),
	}
	seen := make(map[ClassKind]bool, len(classes))
	for _, class := range classes {
		if seen[class.Kind] {
			return nil, &ConfigError{msg: fmt.Sprintf("class %s defined twice", class.Kind)}
		}
		seen[class.Kind] = true
		for _, entry := range class.Entries {
			if entry.Token == "" {
				return nil, &ConfigError{msg: fmt.Sprintf("empty token in class %s", class.Kind)}
			}
			if entry.Glyph == "" {
				return nil, &ConfigError{Token: entry.Token, msg: fmt.Sprintf("empty glyph for '%s' in class %s", entry.Token, class.Kind)}
			}
			if !utf8.ValidString(entry.Glyph) {
				return nil, &ConfigError{Token: entry.Token, msg: fmt.Sprintf("glyph for '%s' is not valid utf-8", entry.Token)}
			}
			if prev, dup := t.kinds[entry.Token]; dup {
				return nil, &ConfigError{
					Token: entry.Token,
					msg:   fmt.Sprintf("token '%s' defined in %s and %s", entry.Token, prev, class.Kind),
				}
			}
			t.glyphs[entry.Token] = entry.Glyph
			t.kinds[entry.Token] = class.Kind
		}
		t.classes = append(t.classes, class.clone())
	}
	return t, nil
}

// Default returns the built-in Assamese table.
func Default() *Table {
	t, err := New(DefaultClasses()...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves a token exactly, case included.
func (t *Table) Lookup(tok Token) (string, bool) {
	if t == nil {
		return "", false
	}
	glyph, ok := t.glyphs[tok]
	return glyph, ok
}

// LookupClass resolves a token within one class only.
func (t *Table) LookupClass(kind ClassKind, tok Token) (string, bool) {
	if t == nil {
		return "", false
	}
	if k, ok := t.kinds[tok]; !ok || k != kind {
		return "", false
	}
	return t.glyphs[tok], true
}

// ClassOf reports which class defines tok.
func (t *Table) ClassOf(tok Token) (ClassKind, bool) {
	if t == nil {
		return 0, false
	}
	kind, ok := t.kinds[tok]
	return kind, ok
}

// Class returns a copy of the entries of one class in declaration order.
func (t *Table) Class(kind ClassKind) Class {
	if t != nil {
		for _, class := range t.classes {
			if class.Kind == kind {
				return class.clone()
			}
		}
	}
	return Class{Kind: kind}
}

// Classes returns copies of every class in the order they were given to New.
func (t *Table) Classes() []Class {
	if t == nil {
		return nil
	}
	out := make([]Class, len(t.classes))
	for i, class := range t.classes {
		out[i] = class.clone()
	}
	return out
}

// Len counts tokens across all classes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}
