// Package board models the on-screen keyboard. Every rendered key carries the
// token it stands for, so hosts find keys by token instead of by the text
// they happen to display.
package board

import (
	"strings"

	"akhor/internal/engine"
	"akhor/internal/keymap"
)

const spaceLabel = "␣"

type Key struct {
	Token keymap.Token
	Glyph string
	Class keymap.ClassKind
	Label string
	Row   int
	Col   int
}

type Board struct {
	rows  [][]Key
	index map[keymap.Token]Key
}

// New lays the table out as digits, symbols, vowels and then the consonants
// split over two rows.
func New(table *keymap.Table) *Board {
	b := &Board{index: make(map[keymap.Token]Key)}
	b.addRow(table.Class(keymap.ClassDigits).Entries, keymap.ClassDigits)
	b.addRow(table.Class(keymap.ClassSymbols).Entries, keymap.ClassSymbols)
	b.addRow(table.Class(keymap.ClassVowels).Entries, keymap.ClassVowels)

	consonants := table.Class(keymap.ClassConsonants).Entries
	mid := (len(consonants) + 1) / 2
	b.addRow(consonants[:mid], keymap.ClassConsonants)
	b.addRow(consonants[mid:], keymap.ClassConsonants)
	return b
}

func (b *Board) addRow(entries []keymap.Entry, kind keymap.ClassKind) {
	if len(entries) == 0 {
		return
	}
	row := make([]Key, 0, len(entries))
	for _, entry := range entries {
		key := Key{
			Token: entry.Token,
			Glyph: entry.Glyph,
			Class: kind,
			Label: Label(entry.Token, kind),
			Row:   len(b.rows),
			Col:   len(row),
		}
		row = append(row, key)
		b.index[entry.Token] = key
	}
	b.rows = append(b.rows, row)
}

// Label is the Latin caption of a key. Bare capital consonants read as
// "Shift+k" so the case distinction is visible.
func Label(tok keymap.Token, kind keymap.ClassKind) string {
	s := string(tok)
	if tok == keymap.TokenSpace {
		return spaceLabel
	}
	if kind == keymap.ClassConsonants && len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return "Shift+" + strings.ToLower(s)
	}
	return s
}

func (b *Board) Rows() [][]Key {
	out := make([][]Key, len(b.rows))
	for i, row := range b.rows {
		out[i] = append([]Key(nil), row...)
	}
	return out
}

func (b *Board) Find(tok keymap.Token) (Key, bool) {
	key, ok := b.index[tok]
	return key, ok
}

// FlashTarget picks the key to highlight for a keystroke: the resolved token,
// or the space bar for a space. Alt chords never highlight anything.
func (b *Board) FlashTarget(res engine.Result) (Key, bool) {
	if res.Token != "" {
		return b.Find(res.Token)
	}
	if strings.HasPrefix(string(res.Key), engine.AltPrefix) {
		return Key{}, false
	}
	if engine.IsSpace(res.Key) {
		return b.Find(keymap.TokenSpace)
	}
	return b.Find(res.Key)
}
