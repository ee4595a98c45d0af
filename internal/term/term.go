// Package term is a line-mode typer for plain terminals. It reads raw keys,
// keeps the line being edited redrawn in place, and writes each finished
// line to its output.
package term

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eiannone/keyboard"
	"github.com/rivo/uniseg"

	"akhor/internal/buffer"
	"akhor/internal/engine"
	"akhor/internal/keymap"
	"akhor/internal/session"
)

// KeyReader yields raw keys the way github.com/eiannone/keyboard does.
type KeyReader interface {
	ReadKey() (rune, keyboard.Key, error)
}

type rawKeyboard struct{}

func (rawKeyboard) ReadKey() (rune, keyboard.Key, error) { return keyboard.GetKey() }

// OpenKeyboard puts the terminal in raw mode. The returned func restores it.
func OpenKeyboard() (KeyReader, func(), error) {
	if err := keyboard.Open(); err != nil {
		return nil, nil, fmt.Errorf("term: open keyboard: %w", err)
	}
	return rawKeyboard{}, func() { _ = keyboard.Close() }, nil
}

type Typer struct {
	sess    *session.Session
	display io.Writer
	out     io.Writer
	logger  *slog.Logger
}

// New returns a typer that redraws on display and commits lines to out. Use
// it as the surface of sess.
func New(display, out io.Writer, logger *slog.Logger) *Typer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Typer{display: display, out: out, logger: logger}
}

func (t *Typer) Attach(sess *session.Session) { t.sess = sess }

func (t *Typer) Render(s buffer.Snapshot) {
	line, after := currentLine(s)
	fmt.Fprintf(t.display, "\r\x1b[2K%s", line)
	if w := uniseg.StringWidth(after); w > 0 {
		fmt.Fprintf(t.display, "\x1b[%dD", w)
	}
}

func (t *Typer) Flash(keymap.Token) {}

// Run reads keys until Esc, Ctrl+C or Ctrl+D. Whatever is left on the last
// line is committed on the way out.
func (t *Typer) Run(keys KeyReader) error {
	if t.sess == nil {
		return fmt.Errorf("term: no session attached")
	}
	for {
		r, key, err := keys.ReadKey()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("term: read key: %w", err)
		}
		ev, act := translate(r, key)
		switch act {
		case actQuit:
			return t.finish()
		case actLeft:
			t.sess.Move(-1)
		case actRight:
			t.sess.Move(1)
		case actType:
			res := t.sess.Key(ev)
			if res.Structural && res.Key == engine.KeyEnter {
				if err := t.commit(finishedLine(res.Snapshot)); err != nil {
					return err
				}
				fmt.Fprint(t.display, "\r\n")
				// Committed text is gone from the screen; only what followed
				// the caret stays editable.
				t.sess.Load(buffer.At(string([]rune(res.Snapshot.Text)[res.Snapshot.Start:]), 0))
			}
		}
	}
	return t.finish()
}

func (t *Typer) finish() error {
	fmt.Fprint(t.display, "\r\n")
	line, after := currentLine(t.sess.Snapshot())
	if rest := line + after; rest != "" {
		return t.commit(rest)
	}
	return nil
}

func (t *Typer) commit(line string) error {
	if _, err := io.WriteString(t.out, line+"\n"); err != nil {
		return fmt.Errorf("term: %w", err)
	}
	t.logger.Debug("line committed", "runes", len([]rune(line)))
	return nil
}

// currentLine splits the line holding the caret at the caret.
func currentLine(s buffer.Snapshot) (before, after string) {
	runes := []rune(s.Text)
	start, end := s.Start, s.Start
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return string(runes[start:s.Start]), string(runes[s.Start:end])
}

// finishedLine is the line just closed by the newline before the caret.
func finishedLine(s buffer.Snapshot) string {
	text := string([]rune(s.Text)[:s.Start])
	text = strings.TrimSuffix(text, "\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return text
}

type action int

const (
	actNone action = iota
	actType
	actQuit
	actLeft
	actRight
)

func translate(r rune, key keyboard.Key) (engine.KeyEvent, action) {
	switch key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC, keyboard.KeyCtrlD:
		return engine.KeyEvent{}, actQuit
	case keyboard.KeyEnter:
		return engine.KeyEvent{Key: engine.KeyEnter}, actType
	case keyboard.KeyTab:
		return engine.KeyEvent{Key: engine.KeyTab}, actType
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		return engine.KeyEvent{Key: engine.KeyBackspace}, actType
	case keyboard.KeyDelete:
		return engine.KeyEvent{Key: engine.KeyDelete}, actType
	case keyboard.KeySpace:
		return engine.KeyEvent{Key: " "}, actType
	case keyboard.KeyArrowLeft:
		return engine.KeyEvent{}, actLeft
	case keyboard.KeyArrowRight:
		return engine.KeyEvent{}, actRight
	}
	if key == 0 && r != 0 {
		return engine.KeyEvent{Key: string(r)}, actType
	}
	return engine.KeyEvent{}, actNone
}
