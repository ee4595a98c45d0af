package tui

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"akhor/internal/board"
	"akhor/internal/keymap"
)

// dottedCircle carries combining signs that would otherwise have nothing to
// sit on when drawn alone on a key.
const dottedCircle = "◌"

type keyCell struct {
	Token keymap.Token
	Label string
	Glyph string
	X, Y  int
	W, H  int
}

func (c keyCell) contains(x, y int) bool {
	return x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H
}

type keyLayout struct {
	cells  []keyCell
	height int
}

// displayGlyph is the glyph as drawn on a key cap.
func displayGlyph(glyph string) string {
	if glyph == " " {
		return ""
	}
	if r, _ := utf8.DecodeRuneInString(glyph); unicode.Is(unicode.M, r) {
		return dottedCircle + glyph
	}
	return glyph
}

// layoutBoard places the keys of b in a band starting at row top, wrapping
// board rows that do not fit in width. Keys are one line tall, or two when
// Latin labels are shown.
func layoutBoard(b *board.Board, width, top int, labels bool) keyLayout {
	h := 1
	if labels {
		h = 2
	}
	var out keyLayout
	y := top
	for _, row := range b.Rows() {
		x := 0
		for _, key := range row {
			glyph := displayGlyph(key.Glyph)
			w := uniseg.StringWidth(glyph)
			if labels {
				if lw := uniseg.StringWidth(key.Label); lw > w {
					w = lw
				}
			}
			w += 2
			if x > 0 && x+w > width {
				x = 0
				y += h
			}
			out.cells = append(out.cells, keyCell{
				Token: key.Token,
				Label: key.Label,
				Glyph: glyph,
				X:     x,
				Y:     y,
				W:     w,
				H:     h,
			})
			x += w + 1
		}
		y += h
	}
	out.height = y - top
	return out
}

func (l keyLayout) hit(x, y int) (keymap.Token, bool) {
	for _, c := range l.cells {
		if c.contains(x, y) {
			return c.Token, true
		}
	}
	return "", false
}

type cluster struct {
	Text  string
	Width int
}

// wrapText splits text into screen lines of grapheme clusters and reports
// where the caret falls. caret counts code points.
func wrapText(text string, caret, width int) (lines [][]cluster, cx, cy int) {
	if width < 1 {
		width = 1
	}
	lines = [][]cluster{nil}
	x, pos := 0, 0
	caretSet := caret <= 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var c string
		var w int
		c, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n := len([]rune(c))

		if c == "\n" || c == "\r\n" {
			if !caretSet && pos >= caret {
				cx, cy, caretSet = x, len(lines)-1, true
			}
			lines = append(lines, nil)
			x = 0
			pos += n
			if !caretSet && pos >= caret {
				cx, cy, caretSet = 0, len(lines)-1, true
			}
			continue
		}
		if w < 1 {
			w = 1
		}
		if x > 0 && x+w > width {
			lines = append(lines, nil)
			x = 0
		}
		if !caretSet && pos >= caret {
			cx, cy, caretSet = x, len(lines)-1, true
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], cluster{Text: c, Width: w})
		x += w
		pos += n
		if !caretSet && pos >= caret {
			cx, cy, caretSet = x, len(lines)-1, true
		}
	}
	if !caretSet {
		cx, cy = x, len(lines)-1
	}
	return lines, cx, cy
}
