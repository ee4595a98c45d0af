package engine

import (
	"strings"
	"unicode/utf8"

	"akhor/internal/keymap"
)

type Fold int

const (
	FoldUpper Fold = iota
	FoldLower
)

// Rule collapses a short vowel already before the caret into its long form
// when the matching letter is typed again.
type Rule struct {
	Trigger  string
	Fold     Fold
	Prev     rune
	Combined keymap.Token
}

func (r Rule) Matches(tok keymap.Token, prev rune) bool {
	key := string(tok)
	if utf8.RuneCountInString(key) != 1 || prev != r.Prev {
		return false
	}
	switch r.Fold {
	case FoldUpper:
		key = strings.ToUpper(key)
	case FoldLower:
		key = strings.ToLower(key)
	}
	return key == r.Trigger
}

var ruleTable = []struct {
	trigger  string
	fold     Fold
	short    keymap.Token
	combined keymap.Token
}{
	{"A", FoldUpper, "A", "AA"},
	{"I", FoldUpper, "I", "II"},
	{"U", FoldUpper, "U", "UU"},
	{"E", FoldUpper, "E", "EE"},
	{"O", FoldUpper, "O", "OO"},
	{"i", FoldLower, "i", "ii"},
	{"u", FoldLower, "u", "uu"},
	{"e", FoldLower, "e", "ee"},
	{"o", FoldLower, "o", "oo"},
	{"r", FoldLower, "rh", "rh"},
}

func buildRules(table *keymap.Table) ([]Rule, error) {
	rules := make([]Rule, 0, len(ruleTable))
	for _, rs := range ruleTable {
		short, ok := table.LookupClass(keymap.ClassVowels, rs.short)
		if !ok {
			return nil, keymap.NewConfigError(rs.short, "combination rule %s needs vowel '%s'", rs.trigger, rs.short)
		}
		if utf8.RuneCountInString(short) != 1 {
			return nil, keymap.NewConfigError(rs.short, "combination rule %s: glyph %q for '%s' must be one code point", rs.trigger, short, rs.short)
		}
		if _, ok := table.LookupClass(keymap.ClassVowels, rs.combined); !ok {
			return nil, keymap.NewConfigError(rs.combined, "combination rule %s needs vowel '%s'", rs.trigger, rs.combined)
		}
		prev, _ := utf8.DecodeRuneInString(short)
		rules = append(rules, Rule{
			Trigger:  rs.trigger,
			Fold:     rs.fold,
			Prev:     prev,
			Combined: rs.combined,
		})
	}
	return rules, nil
}
