package board

import (
	"sort"
	"time"

	"akhor/internal/keymap"
)

const DefaultFlash = 150 * time.Millisecond

// Flasher tracks which keys are drawn pressed. It is purely cosmetic and is
// driven from the host's event loop, with the clock passed in.
type Flasher struct {
	duration time.Duration
	until    map[keymap.Token]time.Time
}

func NewFlasher(duration time.Duration) *Flasher {
	if duration <= 0 {
		duration = DefaultFlash
	}
	return &Flasher{duration: duration, until: make(map[keymap.Token]time.Time)}
}

func (f *Flasher) Duration() time.Duration { return f.duration }

func (f *Flasher) Press(tok keymap.Token, now time.Time) {
	f.until[tok] = now.Add(f.duration)
}

func (f *Flasher) Active(tok keymap.Token, now time.Time) bool {
	deadline, ok := f.until[tok]
	return ok && now.Before(deadline)
}

// Expired drops and returns the keys whose highlight has ended.
func (f *Flasher) Expired(now time.Time) []keymap.Token {
	var out []keymap.Token
	for tok, deadline := range f.until {
		if !now.Before(deadline) {
			out = append(out, tok)
			delete(f.until, tok)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Next reports the earliest pending deadline.
func (f *Flasher) Next() (time.Time, bool) {
	var next time.Time
	found := false
	for _, deadline := range f.until {
		if !found || deadline.Before(next) {
			next = deadline
			found = true
		}
	}
	return next, found
}
