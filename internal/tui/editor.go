// Package tui is the full-screen editor: the text buffer on top, the
// on-screen keyboard below it, and a status line at the bottom.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/gdamore/tcell/v2"

	"akhor/internal/board"
	"akhor/internal/buffer"
	"akhor/internal/export"
	"akhor/internal/keymap"
	"akhor/internal/session"
)

const hint = "^L labels  ^S save .txt  ^R save .rtf  ^Q quit"

var (
	styleText   = tcell.StyleDefault
	styleKey    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleLabel  = styleKey.Foreground(tcell.ColorSilver)
	stylePress  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGold)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

type Options struct {
	Flash    time.Duration
	Labels   bool
	Exporter export.Exporter
	Logger   *slog.Logger
}

// Editor draws a session on a tcell screen. All drawing happens on the
// goroutine running Run.
type Editor struct {
	screen   tcell.Screen
	sess     *session.Session
	flasher  *board.Flasher
	labels   bool
	exporter export.Exporter
	logger   *slog.Logger

	keys    keyLayout
	status  string
	buttons tcell.ButtonMask
	now     func() time.Time
}

func New(screen tcell.Screen, opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		screen:   screen,
		flasher:  board.NewFlasher(opts.Flash),
		labels:   opts.Labels,
		exporter: opts.Exporter,
		logger:   logger,
		status:   hint,
		now:      time.Now,
	}
}

// Attach binds the editor to a session. The session must have been created
// with the editor as its surface.
func (e *Editor) Attach(sess *session.Session) {
	e.sess = sess
}

func (e *Editor) Render(buffer.Snapshot) {}

func (e *Editor) Flash(tok keymap.Token) {
	e.flasher.Press(tok, e.now())
}

// Reloaded is called from other goroutines after the key map was swapped.
func (e *Editor) Reloaded() {
	e.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (e *Editor) Run(ctx context.Context) error {
	if e.sess == nil {
		return fmt.Errorf("tui: no session attached")
	}
	e.screen.EnableMouse()
	e.screen.Clear()

	events := make(chan tcell.Event, 16)
	go pollEvents(ctx, e.screen, events)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	e.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !e.handle(ev) {
				return nil
			}
		case <-timer.C:
			e.flasher.Expired(e.now())
		}
		e.draw()
		e.armTimer(timer)
	}
}

// pollEvents forwards screen events until the screen is finalized or ctx is
// done. events is closed only in the first case.
func pollEvents(ctx context.Context, screen tcell.Screen, events chan<- tcell.Event) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (e *Editor) armTimer(timer *time.Timer) {
	next, ok := e.flasher.Next()
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	if !ok {
		timer.Reset(time.Hour)
		return
	}
	d := next.Sub(e.now())
	if d < time.Millisecond {
		d = time.Millisecond
	}
	timer.Reset(d)
}

// handle applies one event and reports whether the editor should keep going.
func (e *Editor) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return e.handleKey(ev.Key(), ev.Rune(), ev.Modifiers())
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && e.buttons&tcell.Button1 == 0 {
			x, y := ev.Position()
			if tok, ok := e.keys.hit(x, y); ok {
				e.sess.Activate(tok)
			}
		}
		e.buttons = ev.Buttons()
	case *tcell.EventResize:
		e.screen.Sync()
	}
	return true
}

func (e *Editor) handleKey(key tcell.Key, r rune, mod tcell.ModMask) bool {
	act, kev := translateKey(key, r, mod)
	switch act {
	case actQuit:
		return false
	case actType:
		e.sess.Key(kev)
	case actToggleLabels:
		e.labels = !e.labels
	case actExportText:
		e.save(export.FormatText)
	case actExportRTF:
		e.save(export.FormatRTF)
	case actLeft:
		e.sess.Move(-1)
	case actRight:
		e.sess.Move(1)
	case actHome:
		e.sess.MoveTo(lineStart(e.sess.Snapshot()))
	case actEnd:
		e.sess.MoveTo(lineEnd(e.sess.Snapshot()))
	}
	return true
}

func (e *Editor) save(f export.Format) {
	path, err := e.exporter.Save(f, e.sess.Snapshot().Text)
	if err != nil {
		e.logger.Error("export failed", "format", f.String(), "error", err)
		e.status = err.Error()
		return
	}
	e.logger.Info("exported", "path", path)
	e.status = "saved " + path
	if info, err := os.Stat(path); err == nil {
		e.status += " (" + bytefmt.ByteSize(uint64(info.Size())) + ")"
	}
}

func lineStart(s buffer.Snapshot) int {
	runes := []rune(s.Text)
	i := s.Start
	for i > 0 && runes[i-1] != '\n' {
		i--
	}
	return i
}

func lineEnd(s buffer.Snapshot) int {
	runes := []rune(s.Text)
	i := s.Start
	for i < len(runes) && runes[i] != '\n' {
		i++
	}
	return i
}

func (e *Editor) draw() {
	e.screen.Clear()
	width, height := e.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}
	now := e.now()

	e.keys = layoutBoard(e.sess.Board(), width, 0, e.labels)
	boardTop := height - 1 - e.keys.height
	if boardTop < 1 {
		boardTop = 1
	}
	e.keys = layoutBoard(e.sess.Board(), width, boardTop, e.labels)

	snap := e.sess.Snapshot()
	lines, cx, cy := wrapText(snap.Text, snap.Start, width)
	textHeight := boardTop - 1
	scroll := 0
	if cy >= textHeight {
		scroll = cy - textHeight + 1
	}
	for row := 0; row < textHeight && row+scroll < len(lines); row++ {
		x := 0
		for _, c := range lines[row+scroll] {
			putCluster(e.screen, x, row, c.Text, styleText)
			x += c.Width
		}
	}
	if cy-scroll >= 0 && cy-scroll < textHeight {
		e.screen.ShowCursor(cx, cy-scroll)
	} else {
		e.screen.HideCursor()
	}

	for x := 0; x < width; x++ {
		e.screen.SetContent(x, boardTop-1, '─', nil, styleText)
	}
	for _, c := range e.keys.cells {
		if c.Y >= height-1 {
			break
		}
		style, label := styleKey, styleLabel
		if e.flasher.Active(c.Token, now) {
			style, label = stylePress, stylePress
		}
		fill(e.screen, c.X, c.Y, c.W, c.H, style)
		if e.labels {
			putString(e.screen, c.X+1, c.Y, c.Label, label)
			putString(e.screen, c.X+1, c.Y+1, c.Glyph, style)
		} else {
			putString(e.screen, c.X+1, c.Y, c.Glyph, style)
		}
	}

	fill(e.screen, 0, height-1, width, 1, styleStatus)
	putString(e.screen, 0, height-1, e.status, styleStatus)
	e.screen.Show()
}

func fill(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, ' ', nil, style)
		}
	}
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	lines, _, _ := wrapText(text, 0, 1<<16)
	for _, c := range lines[0] {
		putCluster(s, x, y, c.Text, style)
		x += c.Width
	}
}

func putCluster(s tcell.Screen, x, y int, c string, style tcell.Style) {
	runes := []rune(c)
	if len(runes) == 0 {
		return
	}
	s.SetContent(x, y, runes[0], runes[1:], style)
}
