package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akhor/internal/buffer"
	"akhor/internal/engine"
	"akhor/internal/keymap"
)

func TestRowsFollowDeclarationOrder(t *testing.T) {
	b := New(keymap.Default())
	rows := b.Rows()
	require.Len(t, rows, 5)

	assert.Equal(t, keymap.Token("0"), rows[0][0].Token)
	assert.Equal(t, keymap.TokenSpace, rows[0][len(rows[0])-1].Token)
	assert.Equal(t, keymap.Token("."), rows[1][0].Token)
	assert.Equal(t, keymap.Token("A"), rows[2][0].Token)

	// 41 consonants split 21 / 20.
	assert.Len(t, rows[3], 21)
	assert.Len(t, rows[4], 20)
	assert.Equal(t, keymap.Token("k"), rows[3][0].Token)
	assert.Equal(t, rows[4][0].Col, 0)
	assert.Equal(t, 4, rows[4][0].Row)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Shift+k", Label("K", keymap.ClassConsonants))
	assert.Equal(t, "k", Label("k", keymap.ClassConsonants))
	assert.Equal(t, "NG", Label("NG", keymap.ClassConsonants))
	assert.Equal(t, "A", Label("A", keymap.ClassVowels))
	assert.Equal(t, "␣", Label(keymap.TokenSpace, keymap.ClassDigits))
}

func TestFind(t *testing.T) {
	b := New(keymap.Default())
	key, ok := b.Find("K")
	require.True(t, ok)
	assert.Equal(t, "Shift+k", key.Label)
	assert.Equal(t, keymap.ClassConsonants, key.Class)

	_, ok = b.Find("q")
	assert.False(t, ok)
}

func TestFlashTarget(t *testing.T) {
	eng, err := engine.NewEngine(keymap.Default())
	require.NoError(t, err)
	b := New(keymap.Default())

	first := eng.HandleKey(buffer.Snapshot{}, engine.KeyEvent{Key: "A", Shift: true})
	key, ok := b.FlashTarget(first)
	require.True(t, ok)
	assert.Equal(t, keymap.Token("A"), key.Token)

	combined := eng.HandleKey(first.Snapshot, engine.KeyEvent{Key: "A", Shift: true})
	key, ok = b.FlashTarget(combined)
	require.True(t, ok)
	assert.Equal(t, keymap.Token("AA"), key.Token)

	space := eng.HandleKey(buffer.Snapshot{}, engine.KeyEvent{Key: " "})
	key, ok = b.FlashTarget(space)
	require.True(t, ok)
	assert.Equal(t, keymap.TokenSpace, key.Token)

	alt := eng.HandleKey(buffer.Snapshot{}, engine.KeyEvent{Key: "k", Alt: true})
	_, ok = b.FlashTarget(alt)
	assert.False(t, ok)

	enter := eng.HandleKey(buffer.Snapshot{}, engine.KeyEvent{Key: engine.KeyEnter})
	_, ok = b.FlashTarget(enter)
	assert.False(t, ok)
}

func TestFlasher(t *testing.T) {
	f := NewFlasher(0)
	assert.Equal(t, DefaultFlash, f.Duration())

	now := time.Unix(100, 0)
	f.Press("k", now)
	f.Press("A", now.Add(50*time.Millisecond))

	assert.True(t, f.Active("k", now.Add(100*time.Millisecond)))
	assert.False(t, f.Active("K", now))

	next, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, now.Add(DefaultFlash), next)

	assert.Equal(t, []keymap.Token{"k"}, f.Expired(now.Add(160*time.Millisecond)))
	assert.False(t, f.Active("k", now.Add(160*time.Millisecond)))
	assert.Equal(t, []keymap.Token{"A"}, f.Expired(now.Add(time.Second)))

	_, ok = f.Next()
	assert.False(t, ok)
}
