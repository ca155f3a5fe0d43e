package share

import (
	"testing"

	"github.com/robalobadob/lemonle/internal/game"
)

func play(t *testing.T, solution string, guesses ...string) *game.Engine {
	t.Helper()
	e := game.New(game.MustWord(solution))
	for _, g := range guesses {
		for i := 0; i < len(g); i++ {
			e.AddLetter(g[i])
		}
		e.Submit()
	}
	return e
}

func TestRenderStopsAtWinningRow(t *testing.T) {
	e := play(t, "LEMON", "CRANE", "MELON", "LEMON")
	got := Render("my attempt", e.Snapshot())
	want := "my attempt\n" +
		"⬛⬛⬛🟨🟨\n" +
		"🟨🟩🟨🟩🟩\n" +
		"🟩🟩🟩🟩🟩\n"
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderSkipsUnsubmittedRow(t *testing.T) {
	e := play(t, "LEMON", "CRANE")
	e.AddLetter('L')
	e.AddLetter('E')
	if got, want := Grid(e.Snapshot()), "⬛⬛⬛🟨🟨"; got != want {
		t.Errorf("Grid = %q, want %q", got, want)
	}
}

func TestRenderEmptyGame(t *testing.T) {
	if got := Render("", game.New(game.MustWord("LEMON")).Snapshot()); got != "" {
		t.Errorf("Render = %q, want empty", got)
	}
}

func TestRenderLostGameHasSixLines(t *testing.T) {
	e := play(t, "LEMON", "CRANE", "CRANE", "CRANE", "CRANE", "CRANE", "CRANE")
	got := Grid(e.Snapshot())
	lines := 1
	for _, r := range got {
		if r == '\n' {
			lines++
		}
	}
	if lines != game.Rows {
		t.Errorf("lines = %d, want %d", lines, game.Rows)
	}
}

func TestGlyph(t *testing.T) {
	tests := map[game.Mark]string{
		game.MarkCorrect:  GlyphCorrect,
		game.MarkPresent:  GlyphPresent,
		game.MarkAbsent:   GlyphAbsent,
		game.MarkUnmarked: GlyphAbsent,
	}
	for m, want := range tests {
		if got := Glyph(m); got != want {
			t.Errorf("Glyph(%v) = %q, want %q", m, got, want)
		}
	}
}
