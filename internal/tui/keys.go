package tui

import "github.com/gdamore/tcell/v2"

// action is what a key press means to the game screen.
type action uint8

const (
	actNone action = iota
	actLetter
	actBackspace
	actSubmit
	actHelp
	actClose
	actReset
	actQuit
)

// translateKey maps a terminal key event to an action. For actLetter the second
// result is the typed ASCII letter (either case).
func translateKey(ev *tcell.EventKey) (action, byte) {
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
			return actNone, 0
		}
		r := ev.Rune()
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return actLetter, byte(r)
		}
	case tcell.KeyEnter:
		return actSubmit, 0
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		return actBackspace, 0
	case tcell.KeyF1:
		return actHelp, 0
	case tcell.KeyEscape:
		return actClose, 0
	case tcell.KeyCtrlR:
		return actReset, 0
	case tcell.KeyCtrlC:
		return actQuit, 0
	}
	return actNone, 0
}
