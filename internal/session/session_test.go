package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akhor/internal/buffer"
	"akhor/internal/engine"
	"akhor/internal/keymap"
)

type recorder struct {
	renders []buffer.Snapshot
	flashes []keymap.Token
}

func (r *recorder) Render(s buffer.Snapshot) { r.renders = append(r.renders, s) }
func (r *recorder) Flash(tok keymap.Token)   { r.flashes = append(r.flashes, tok) }

func newTestSession(t *testing.T) (*Session, *recorder) {
	t.Helper()
	eng, err := engine.NewEngine(keymap.Default())
	require.NoError(t, err)
	rec := &recorder{}
	return New(eng, rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func TestKeyRendersAndFlashes(t *testing.T) {
	s, rec := newTestSession(t)

	s.Key(engine.KeyEvent{Key: "k"})
	s.Key(engine.KeyEvent{Key: "i"})
	s.Key(engine.KeyEvent{Key: "i"})

	assert.Equal(t, "কী", s.Snapshot().Text)
	assert.Len(t, rec.renders, 3)
	assert.Equal(t, []keymap.Token{"k", "i", "ii"}, rec.flashes)
}

func TestIgnoredKeyDoesNotRender(t *testing.T) {
	s, rec := newTestSession(t)
	res := s.Key(engine.KeyEvent{Key: "q"})
	assert.False(t, res.Changed)
	assert.Empty(t, rec.renders)
	assert.Empty(t, rec.flashes)
}

func TestActivateSkipsCombination(t *testing.T) {
	s, rec := newTestSession(t)
	s.Activate("i")
	s.Activate("i")
	assert.Equal(t, "িি", s.Snapshot().Text)
	assert.Equal(t, []keymap.Token{"i", "i"}, rec.flashes)

	s.Activate("missing")
	assert.Len(t, rec.flashes, 2)
}

func TestMoveAndSelect(t *testing.T) {
	s, _ := newTestSession(t)
	s.Load(buffer.New("abcd"))

	assert.Equal(t, 2, s.Move(-2).Start)
	assert.Equal(t, 0, s.Move(-10).Start)
	assert.Equal(t, 4, s.MoveTo(99).End)

	sel := s.Select(3, 1)
	assert.Equal(t, buffer.Snapshot{Text: "abcd", Start: 1, End: 3}, sel)

	s.Key(engine.KeyEvent{Key: engine.KeyBackspace})
	assert.Equal(t, buffer.At("ad", 1), s.Snapshot())
}

func TestSetTable(t *testing.T) {
	s, _ := newTestSession(t)

	classes, err := keymap.ApplyOverrides(keymap.DefaultClasses(), []keymap.Override{{Token: "k", Glyph: "খ"}})
	require.NoError(t, err)
	table, err := keymap.New(classes...)
	require.NoError(t, err)

	require.NoError(t, s.SetTable(table))
	s.Key(engine.KeyEvent{Key: "k"})
	assert.Equal(t, "খ", s.Snapshot().Text)

	broken, err := keymap.New(keymap.Class{Kind: keymap.ClassDigits, Entries: []keymap.Entry{{Token: "1", Glyph: "১"}}})
	require.NoError(t, err)
	assert.Error(t, s.SetTable(broken))

	s.Key(engine.KeyEvent{Key: "k"})
	assert.Equal(t, "খখ", s.Snapshot().Text, "old table stays active")
}

func TestDiscardSurface(t *testing.T) {
	eng, err := engine.NewEngine(keymap.Default())
	require.NoError(t, err)
	s := New(eng, nil, nil)
	s.Key(engine.KeyEvent{Key: "k"})
	assert.Equal(t, 1, s.Snapshot().Len())
}
