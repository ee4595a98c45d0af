// Package session owns the live text buffer of a host and routes keystrokes
// through the engine. The engine itself stays pure; Session is the one place
// that holds state between keystrokes.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"akhor/internal/board"
	"akhor/internal/buffer"
	"akhor/internal/engine"
	"akhor/internal/keymap"
)

// Surface is what a host must provide: a way to show the buffer and a way to
// highlight a key. Neither is allowed to block.
type Surface interface {
	Render(s buffer.Snapshot)
	Flash(tok keymap.Token)
}

type discard struct{}

func (discard) Render(buffer.Snapshot) {}
func (discard) Flash(keymap.Token)     {}

// Discard is a Surface that shows nothing.
var Discard Surface = discard{}

var _ Surface = discard{}

type Session struct {
	mu      sync.Mutex
	eng     *engine.Engine
	board   *board.Board
	snap    buffer.Snapshot
	surface Surface
	logger  *slog.Logger
}

func New(eng *engine.Engine, surface Surface, logger *slog.Logger) *Session {
	if surface == nil {
		surface = Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		eng:     eng,
		board:   board.New(eng.Table()),
		surface: surface,
		logger:  logger,
	}
}

func (s *Session) Key(ev engine.KeyEvent) engine.Result {
	s.mu.Lock()
	res := s.eng.HandleKey(s.snap, ev)
	s.snap = res.Snapshot
	target, flash := s.board.FlashTarget(res)
	s.mu.Unlock()

	s.logger.Debug("key", "key", res.Key, "token", res.Token, "changed", res.Changed)
	s.publish(res, target, flash)
	return res
}

// Activate types a virtual key.
func (s *Session) Activate(tok keymap.Token) engine.Result {
	s.mu.Lock()
	res := s.eng.Activate(s.snap, tok)
	s.snap = res.Snapshot
	target, flash := s.board.Find(res.Token)
	s.mu.Unlock()

	s.logger.Debug("activate", "token", tok, "changed", res.Changed)
	s.publish(res, target, flash && res.Changed)
	return res
}

func (s *Session) publish(res engine.Result, target board.Key, flash bool) {
	if res.Changed {
		s.surface.Render(res.Snapshot)
	}
	if flash {
		s.surface.Flash(target.Token)
	}
}

// SetTable swaps the key map. The old engine stays in place when the new
// table cannot drive the combination rules.
func (s *Session) SetTable(table *keymap.Table) error {
	eng, err := engine.NewEngine(table)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.mu.Lock()
	s.eng = eng
	s.board = board.New(table)
	s.mu.Unlock()
	s.logger.Info("key map replaced", "tokens", table.Len())
	return nil
}

func (s *Session) Snapshot() buffer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

func (s *Session) Engine() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

// Load replaces the whole buffer, as when a host restores text it already
// holds.
func (s *Session) Load(snap buffer.Snapshot) {
	s.mu.Lock()
	s.snap = snap.Clamp()
	out := s.snap
	s.mu.Unlock()
	s.surface.Render(out)
}

// Move shifts the caret by delta code points, collapsing any selection.
func (s *Session) Move(delta int) buffer.Snapshot {
	s.mu.Lock()
	s.snap = s.snap.MoveTo(s.snap.Start + delta)
	out := s.snap
	s.mu.Unlock()
	s.surface.Render(out)
	return out
}

func (s *Session) MoveTo(pos int) buffer.Snapshot {
	s.mu.Lock()
	s.snap = s.snap.MoveTo(pos)
	out := s.snap
	s.mu.Unlock()
	s.surface.Render(out)
	return out
}

func (s *Session) Select(start, end int) buffer.Snapshot {
	s.mu.Lock()
	s.snap = buffer.Select(s.snap.Text, start, end)
	out := s.snap
	s.mu.Unlock()
	s.surface.Render(out)
	return out
}
