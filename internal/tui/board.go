package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/lemonle/internal/game"
)

const (
	tileW   = 3 // " A "
	tileGap = 1
	boardW  = game.Cols*(tileW+tileGap) - tileGap
	emptyCh = '·'
)

var (
	colorCorrect = tcell.ColorGreen
	colorPresent = tcell.ColorYellow
	colorAbsent  = tcell.ColorDarkGray
	colorKey     = tcell.ColorLightGray

	styleEmpty   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTyped   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true).Underline(true)
	styleShake   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleSpecial = tcell.StyleDefault.Background(colorKey).Foreground(tcell.ColorBlack).Bold(true)
)

var keyRows = [...]string{"QWERTYUIOP", "ASDFGHJKL", "ZXCVBNM"}

// markStyle colors a submitted tile or a keyboard key. ok is false for MarkUnmarked.
func markStyle(m game.Mark) (tcell.Style, bool) {
	switch m {
	case game.MarkCorrect:
		return tcell.StyleDefault.Background(colorCorrect).Foreground(tcell.ColorWhite).Bold(true), true
	case game.MarkPresent:
		return tcell.StyleDefault.Background(colorPresent).Foreground(tcell.ColorBlack).Bold(true), true
	case game.MarkAbsent:
		return tcell.StyleDefault.Background(colorAbsent).Foreground(tcell.ColorWhite), true
	}
	return tcell.StyleDefault, false
}

func tileStyle(t game.Tile) tcell.Style {
	if st, ok := markStyle(t.Mark); ok {
		return st
	}
	if t.Empty() {
		return styleEmpty
	}
	return styleTyped
}

// drawBoard renders the attempt grid centered in width and returns the height used.
// With shake set the current row is flagged on both sides.
func drawBoard(s tcell.Screen, x, y, width int, snap game.Snapshot, shake bool) int {
	left := x + max(0, (width-boardW)/2)
	for r := 0; r < game.Rows; r++ {
		row := y + r*2
		for c := 0; c < game.Cols; c++ {
			t := snap.Grid[r][c]
			ch := rune(emptyCh)
			if !t.Empty() {
				ch = rune(t.Letter)
			}
			drawCell(s, left+c*(tileW+tileGap), row, ch, tileStyle(t))
		}
		if shake && r == snap.Row {
			s.SetContent(left-2, row, '>', nil, styleShake)
			s.SetContent(left+boardW+1, row, '<', nil, styleShake)
		}
	}
	return game.Rows*2 - 1
}

// drawCell writes one padded character cell of width tileW.
func drawCell(s tcell.Screen, x, y int, ch rune, st tcell.Style) {
	s.SetContent(x, y, ' ', nil, st)
	s.SetContent(x+1, y, ch, nil, st)
	s.SetContent(x+2, y, ' ', nil, st)
}

// drawKeyboard renders the QWERTY keys colored from hints, with ENTER and ⌫
// around the bottom row. Returns the height used.
func drawKeyboard(s tcell.Screen, x, y, width int, hints game.Hints) int {
	for i, keys := range keyRows {
		labels := make([]string, 0, len(keys)+2)
		if i == len(keyRows)-1 {
			labels = append(labels, "ENTER")
		}
		for j := 0; j < len(keys); j++ {
			labels = append(labels, keys[j:j+1])
		}
		if i == len(keyRows)-1 {
			labels = append(labels, "⌫")
		}

		rowW := -1
		for _, l := range labels {
			rowW += len([]rune(l)) + 2 + 1
		}
		cx := x + max(0, (width-rowW)/2)
		for _, l := range labels {
			st := styleSpecial
			if len(l) == 1 {
				st = keyStyle(hints.Of(l[0]))
			}
			cx = drawKey(s, cx, y+i*2, l, st) + 1
		}
	}
	return len(keyRows)*2 - 1
}

func keyStyle(m game.Mark) tcell.Style {
	if st, ok := markStyle(m); ok {
		return st
	}
	return tcell.StyleDefault.Background(colorKey).Foreground(tcell.ColorBlack)
}

// drawKey writes " label " and returns the column after it.
func drawKey(s tcell.Screen, x, y int, label string, st tcell.Style) int {
	s.SetContent(x, y, ' ', nil, st)
	x++
	for _, r := range label {
		s.SetContent(x, y, r, nil, st)
		x++
	}
	s.SetContent(x, y, ' ', nil, st)
	return x + 1
}
