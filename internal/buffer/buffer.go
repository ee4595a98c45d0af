// Package buffer holds the text snapshot exchanged between a host surface and
// the transliteration engine. Positions count Unicode code points, which is
// what a browser textarea counts for text in the Bengali block.
package buffer

// Snapshot is an immutable view of a text surface: its text and the selected
// range [Start, End]. Start == End is a plain caret.
type Snapshot struct {
	Text  string
	Start int
	End   int
}

func New(text string) Snapshot {
	n := len([]rune(text))
	return Snapshot{Text: text, Start: n, End: n}
}

func At(text string, caret int) Snapshot {
	return Snapshot{Text: text, Start: caret, End: caret}.Clamp()
}

func Select(text string, start, end int) Snapshot {
	return Snapshot{Text: text, Start: start, End: end}.Clamp()
}

// Clamp forces 0 <= Start <= End <= Len.
func (s Snapshot) Clamp() Snapshot {
	n := s.Len()
	s.Start = clamp(s.Start, 0, n)
	s.End = clamp(s.End, 0, n)
	if s.End < s.Start {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

func (s Snapshot) Len() int { return len([]rune(s.Text)) }

func (s Snapshot) HasSelection() bool { return s.Start < s.End }

func (s Snapshot) Caret() int { return s.Start }

// Prev returns the code point immediately before a caret. It reports false at
// position 0 and whenever a selection is active.
func (s Snapshot) Prev() (rune, bool) {
	s = s.Clamp()
	if s.HasSelection() || s.Start == 0 {
		return 0, false
	}
	return []rune(s.Text)[s.Start-1], true
}

func (s Snapshot) Selected() string {
	s = s.Clamp()
	return string([]rune(s.Text)[s.Start:s.End])
}

// Replace inserts text in place of the selection and leaves the caret after it.
func (s Snapshot) Replace(text string) Snapshot {
	s = s.Clamp()
	runes := []rune(s.Text)
	inserted := []rune(text)
	out := make([]rune, 0, len(runes)-(s.End-s.Start)+len(inserted))
	out = append(out, runes[:s.Start]...)
	out = append(out, inserted...)
	out = append(out, runes[s.End:]...)
	caret := s.Start + len(inserted)
	return Snapshot{Text: string(out), Start: caret, End: caret}
}

// DeleteRange removes [from, to) and puts the caret at from.
func (s Snapshot) DeleteRange(from, to int) Snapshot {
	runes := []rune(s.Text)
	from = clamp(from, 0, len(runes))
	to = clamp(to, 0, len(runes))
	if to < from {
		from, to = to, from
	}
	out := make([]rune, 0, len(runes)-(to-from))
	out = append(out, runes[:from]...)
	out = append(out, runes[to:]...)
	return Snapshot{Text: string(out), Start: from, End: from}
}

// DeleteBackward is the Backspace edit: the selection if there is one,
// otherwise the code point before the caret.
func (s Snapshot) DeleteBackward() Snapshot {
	s = s.Clamp()
	if s.HasSelection() {
		return s.DeleteRange(s.Start, s.End)
	}
	if s.Start == 0 {
		return s
	}
	return s.DeleteRange(s.Start-1, s.Start)
}

// DeleteForward is the Delete edit: the selection if there is one, otherwise
// the code point after the caret.
func (s Snapshot) DeleteForward() Snapshot {
	s = s.Clamp()
	if s.HasSelection() {
		return s.DeleteRange(s.Start, s.End)
	}
	if s.Start >= s.Len() {
		return s
	}
	return s.DeleteRange(s.Start, s.Start+1)
}

// MoveTo collapses the selection to a caret at pos.
func (s Snapshot) MoveTo(pos int) Snapshot {
	s.Start, s.End = pos, pos
	return s.Clamp()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
