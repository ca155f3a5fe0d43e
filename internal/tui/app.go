// Package tui is the terminal front end: the attempt board, the on-screen keyboard,
// a toast line and modal dialogs, built on tview.
package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/lemonle/internal/config"
	"github.com/robalobadob/lemonle/internal/words"
)

const (
	pageGame = "game"
	pageHelp = "help"
	pageEnd  = "end"

	btnPlayAgain = "Play again"
	btnClose     = "Close"
)

const helpText = `Guess the five-letter word in six tries.

Type letters, Enter to submit, Backspace to erase.
Green: right letter, right spot.
Yellow: in the word, wrong spot.
Gray: not in the word.

Ctrl-R new round    Esc close    Ctrl-C quit`

// App is the tview application for play mode.
type App struct {
	app   *tview.Application
	pages *tview.Pages
	toast *tview.TextView
	r     *round
}

// New builds the screen for cfg.Word. rec may be nil.
func New(cfg config.Config, rec Recorder) *App {
	a := &App{
		app:   tview.NewApplication(),
		pages: tview.NewPages(),
		r:     newRound(cfg.Word, words.NewPicker(cfg.Taunts), cfg.ShareHeader, rec),
	}

	title := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(cfg.ShareHeader)

	board := tview.NewBox()
	board.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		h := drawBoard(screen, x, y, width, a.r.eng.Snapshot(), a.r.shake)
		drawKeyboard(screen, x, y+h+2, width, a.r.eng.Hints())
		return x, y, width, height
	})

	a.toast = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(a.r.toast)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(title, 1, 0, false).
		AddItem(a.toast, 2, 0, false).
		AddItem(board, 0, 1, true).
		AddItem(tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("F1 help"), 1, 0, false)

	a.pages.AddPage(pageGame, layout, true, true)
	a.app.SetRoot(a.pages, true).SetInputCapture(a.capture)
	return a
}

// Run blocks until the player quits.
func (a *App) Run() error {
	log.Info().Msg("terminal game started")
	defer log.Info().Msg("terminal game stopped")
	return a.app.Run()
}

func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	act, letter := translateKey(ev)
	if act == actQuit {
		a.app.Stop()
		return nil
	}
	if a.dialogOpen() {
		if act == actClose {
			a.closeDialog()
			return nil
		}
		// buttons handle the rest
		return ev
	}

	switch a.r.handle(act, letter) {
	case effNone:
		if act == actNone {
			return ev
		}
	case effRedraw:
		a.toast.SetText(a.r.toast)
	case effFinished:
		a.toast.SetText(a.r.toast)
		a.showEnd()
	case effHelp:
		a.showDialog(pageHelp, helpText, []string{btnClose})
	}
	return nil
}

func (a *App) showEnd() {
	a.showDialog(pageEnd, a.endText(), []string{btnPlayAgain, btnClose})
}

// endText is the end-of-game dialog body: the result line and the share grid.
func (a *App) endText() string {
	return a.r.toast + "\n\n" + a.r.shareText()
}

func (a *App) showDialog(name, text string, buttons []string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons(buttons).
		SetDoneFunc(func(_ int, label string) { a.dialogDone(label) })
	a.pages.AddPage(name, modal, false, true)
}

// dialogDone handles a dialog button. Esc inside a modal arrives with an empty label.
func (a *App) dialogDone(label string) {
	if label == btnPlayAgain {
		a.r.reset()
		a.toast.SetText(a.r.toast)
	}
	a.closeDialog()
}

func (a *App) dialogOpen() bool {
	name, _ := a.pages.GetFrontPage()
	return name != pageGame
}

func (a *App) closeDialog() {
	if name, _ := a.pages.GetFrontPage(); name != pageGame {
		a.pages.RemovePage(name)
	}
}
