package tui

import (
	"github.com/gdamore/tcell/v2"

	"akhor/internal/engine"
)

type action int

const (
	actNone action = iota
	actType
	actQuit
	actToggleLabels
	actExportText
	actExportRTF
	actLeft
	actRight
	actHome
	actEnd
)

// translateKey turns a terminal key into either an editor command or a
// keystroke for the engine.
func translateKey(key tcell.Key, r rune, mod tcell.ModMask) (action, engine.KeyEvent) {
	alt := mod&tcell.ModAlt != 0
	shift := mod&tcell.ModShift != 0

	switch key {
	case tcell.KeyCtrlQ, tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit, engine.KeyEvent{}
	case tcell.KeyCtrlL:
		return actToggleLabels, engine.KeyEvent{}
	case tcell.KeyCtrlS:
		return actExportText, engine.KeyEvent{}
	case tcell.KeyCtrlR:
		return actExportRTF, engine.KeyEvent{}
	case tcell.KeyLeft:
		return actLeft, engine.KeyEvent{}
	case tcell.KeyRight:
		return actRight, engine.KeyEvent{}
	case tcell.KeyHome:
		return actHome, engine.KeyEvent{}
	case tcell.KeyEnd:
		return actEnd, engine.KeyEvent{}
	case tcell.KeyEnter:
		return actType, engine.KeyEvent{Key: engine.KeyEnter, Shift: shift, Alt: alt}
	case tcell.KeyTab:
		return actType, engine.KeyEvent{Key: engine.KeyTab, Shift: shift, Alt: alt}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return actType, engine.KeyEvent{Key: engine.KeyBackspace, Alt: alt}
	case tcell.KeyDelete:
		return actType, engine.KeyEvent{Key: engine.KeyDelete, Alt: alt}
	case tcell.KeyRune:
		return actType, engine.KeyEvent{Key: string(r), Shift: shift, Alt: alt}
	}
	return actNone, engine.KeyEvent{}
}
