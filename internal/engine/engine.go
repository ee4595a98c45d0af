package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"akhor/internal/buffer"
	"akhor/internal/keymap"
)

// Named keys, as reported by the host.
const (
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeySpace     = "Space"
	KeySpacebar  = "Spacebar"

	AltPrefix = "Alt+"
	indent    = "    "
)

type KeyEvent struct {
	Key   string
	Shift bool
	Alt   bool
}

// Result is the outcome of one keystroke. Key is the normalized event token;
// Token and Glyph are set only when the key map resolved something.
type Result struct {
	Snapshot   buffer.Snapshot
	Key        keymap.Token
	Token      keymap.Token
	Glyph      string
	Changed    bool
	Structural bool
}

// Engine maps keystrokes to buffer edits. It keeps no state between calls;
// everything it needs is derived from the snapshot it is given.
type Engine struct {
	table *keymap.Table
	rules []Rule
}

func NewEngine(table *keymap.Table) (*Engine, error) {
	if table == nil {
		return nil, fmt.Errorf("engine: nil key map")
	}
	rules, err := buildRules(table)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return &Engine{table: table, rules: rules}, nil
}

func (e *Engine) Table() *keymap.Table { return e.table }

func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Normalize turns a raw key event into the token the key map is keyed by.
func Normalize(ev KeyEvent) keymap.Token {
	if ev.Alt {
		return keymap.Token(AltPrefix + ev.Key)
	}
	// Named keys keep their meaning under Shift, so Shift+Enter still
	// breaks the line instead of being dropped as an unknown token.
	if ev.Shift && utf8.RuneCountInString(ev.Key) == 1 {
		return keymap.Token(strings.ToUpper(ev.Key))
	}
	return keymap.Token(ev.Key)
}

func IsSpace(tok keymap.Token) bool {
	return tok == " " || tok == KeySpace || tok == KeySpacebar
}

func (e *Engine) HandleKey(in buffer.Snapshot, ev KeyEvent) Result {
	s := in.Clamp()
	tok := Normalize(ev)

	switch {
	case tok == KeyEnter:
		return structural(s, tok, s.Replace("\n"))
	case tok == KeyTab:
		return structural(s, tok, s.Replace(indent))
	case tok == KeyBackspace:
		return structural(s, tok, s.DeleteBackward())
	case tok == KeyDelete:
		return structural(s, tok, s.DeleteForward())
	case IsSpace(tok):
		return structural(s, tok, s.Replace(" "))
	}

	base, resolved := s, tok
	if prev, ok := s.Prev(); ok {
		if rule, ok := e.match(tok, prev); ok {
			base = s.DeleteRange(s.Start-1, s.Start)
			resolved = rule.Combined
		}
	}

	glyph, ok := e.table.Lookup(resolved)
	if !ok {
		return Result{Snapshot: in, Key: tok}
	}
	return Result{
		Snapshot: base.Replace(glyph),
		Key:      tok,
		Token:    resolved,
		Glyph:    glyph,
		Changed:  true,
	}
}

// Activate inserts the glyph of a virtual key. Pointer activation has no
// notion of a repeated key, so combination rules do not apply.
func (e *Engine) Activate(in buffer.Snapshot, tok keymap.Token) Result {
	s := in.Clamp()
	glyph, ok := e.table.Lookup(tok)
	if !ok {
		return Result{Snapshot: in, Key: tok}
	}
	return Result{
		Snapshot: s.Replace(glyph),
		Key:      tok,
		Token:    tok,
		Glyph:    glyph,
		Changed:  true,
	}
}

func (e *Engine) match(tok keymap.Token, prev rune) (Rule, bool) {
	for _, rule := range e.rules {
		if rule.Matches(tok, prev) {
			return rule, true
		}
	}
	return Rule{}, false
}

func structural(before buffer.Snapshot, tok keymap.Token, after buffer.Snapshot) Result {
	return Result{
		Snapshot:   after,
		Key:        tok,
		Changed:    after != before,
		Structural: true,
	}
}
