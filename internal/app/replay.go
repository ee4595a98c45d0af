package app

import (
	"akhor/internal/buffer"
	"akhor/internal/engine"
)

// EngineSource hands out the engine currently in use. A session satisfies it,
// so servers pick up a reloaded key map on their next request.
type EngineSource interface {
	Engine() *engine.Engine
}

type staticEngine struct{ eng *engine.Engine }

func (s staticEngine) Engine() *engine.Engine { return s.eng }

// Static wraps a fixed engine as an EngineSource.
func Static(eng *engine.Engine) EngineSource { return staticEngine{eng: eng} }

// KeyFor maps one rune of a Latin script to the key event a keyboard would
// send for it.
func KeyFor(r rune) engine.KeyEvent {
	switch r {
	case '\n', '\r':
		return engine.KeyEvent{Key: engine.KeyEnter}
	case '\t':
		return engine.KeyEvent{Key: engine.KeyTab}
	case '\b', 0x7f:
		return engine.KeyEvent{Key: engine.KeyBackspace}
	default:
		return engine.KeyEvent{Key: string(r)}
	}
}

// Replay types script into an empty buffer and returns the result. Each rune
// is one keystroke, so "kii" goes through the same combination rules as
// typing k, i, i.
func Replay(eng *engine.Engine, script string) string {
	s := buffer.Snapshot{}
	for _, r := range script {
		s = eng.HandleKey(s, KeyFor(r)).Snapshot
	}
	return s.Text
}
