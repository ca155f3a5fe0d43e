// Package share renders a finished (or running) game as shareable text:
// one line of glyphs per submitted row, stopping at the winning row.
package share

import (
	"strings"

	"github.com/robalobadob/lemonle/internal/game"
)

const (
	GlyphCorrect = "🟩"
	GlyphPresent = "🟨"
	GlyphAbsent  = "⬛"
)

// Glyph maps a mark to its share glyph. Unmarked renders as absent.
func Glyph(m game.Mark) string {
	switch m {
	case game.MarkCorrect:
		return GlyphCorrect
	case game.MarkPresent:
		return GlyphPresent
	}
	return GlyphAbsent
}

// Line renders one row of marks.
func Line(marks [game.Cols]game.Mark) string {
	var b strings.Builder
	for _, m := range marks {
		b.WriteString(Glyph(m))
	}
	return b.String()
}

// Render returns header followed by one line per submitted row and a trailing newline.
// An empty header is omitted.
func Render(header string, snap game.Snapshot) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteByte('\n')
	}
	for _, marks := range snap.Submitted() {
		b.WriteString(Line(marks))
		b.WriteByte('\n')
		if allCorrect(marks) {
			break
		}
	}
	return b.String()
}

// Grid is Render without a header, used where only the tiles are stored.
func Grid(snap game.Snapshot) string {
	return strings.TrimSuffix(Render("", snap), "\n")
}

func allCorrect(marks [game.Cols]game.Mark) bool {
	for _, m := range marks {
		if m != game.MarkCorrect {
			return false
		}
	}
	return true
}
