// internal/game/engine.go
//
// Core game engine for a single guessing session.
// Responsibilities:
//   - Hold the fixed solution, the 6x5 attempt grid and the cursor.
//   - Accept letters / backspace at the cursor.
//   - Score submitted rows with the two-pass duplicate-aware algorithm.
//   - Keep cumulative keyboard hints and the in_progress → won/lost transition.
//
// Notes:
//   - Invalid input is never an error: it is ignored, or reported as a typed Outcome.
//   - An Engine is not safe for concurrent use; callers serialize access.

package game

import (
	"golang.org/x/exp/slices"
)

// OutcomeKind classifies the result of Submit.
type OutcomeKind uint8

const (
	OutcomeSubmitted OutcomeKind = iota // row scored and stored
	OutcomeRejected                     // row incomplete, nothing changed
	OutcomeIgnored                      // game already over, nothing changed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeIgnored:
		return "ignored"
	}
	return "unknown"
}

func (k OutcomeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// RejectReason explains an OutcomeRejected.
type RejectReason uint8

const (
	RejectNone RejectReason = iota
	RejectIncompleteRow
)

func (r RejectReason) String() string {
	if r == RejectIncompleteRow {
		return "incomplete_row"
	}
	return ""
}

func (r RejectReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Outcome is returned by Submit. Row and Marks are only meaningful for OutcomeSubmitted.
type Outcome struct {
	Kind   OutcomeKind
	Reason RejectReason
	Row    int
	Guess  Word
	Marks  [Cols]Mark
	Status Status
}

// Engine owns all state of one game.
type Engine struct {
	solution Word
	grid     [Rows][Cols]Tile
	row, col int
	hints    Hints
	status   Status
}

// New constructs an engine for solution in its initial state.
func New(solution Word) *Engine {
	return &Engine{solution: solution}
}

// AddLetter writes letter at the cursor and advances it.
// Lowercase letters are accepted and uppercased. Returns false when ignored:
// the game is over, the row is full, or letter is not A–Z.
func (e *Engine) AddLetter(letter byte) bool {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if e.status.Terminal() || e.col >= Cols || !isUpper(letter) {
		return false
	}
	e.grid[e.row][e.col].Letter = letter
	e.col++
	return true
}

// Backspace clears the slot before the cursor. Returns false when ignored.
func (e *Engine) Backspace() bool {
	if e.status.Terminal() || e.col == 0 {
		return false
	}
	e.col--
	e.grid[e.row][e.col] = Tile{}
	return true
}

// Submit scores the current row.
//
// State transitions:
//   - Guess equals the solution → won.
//   - Else if that was the last row → lost.
//
// The row advances on every accepted submission, including the winning one.
func (e *Engine) Submit() Outcome {
	if e.status.Terminal() {
		return Outcome{Kind: OutcomeIgnored, Status: e.status}
	}
	if e.col < Cols {
		return Outcome{Kind: OutcomeRejected, Reason: RejectIncompleteRow, Row: e.row, Status: e.status}
	}

	var guess Word
	for i := range guess {
		guess[i] = e.grid[e.row][i].Letter
	}
	marks := Score(e.solution, guess)
	for i, m := range marks {
		e.grid[e.row][i].Mark = m
		e.hints.Promote(guess[i], m)
	}

	row := e.row
	e.row++
	e.col = 0
	switch {
	case guess == e.solution:
		e.status = StatusWon
	case e.row >= Rows:
		e.status = StatusLost
	}
	return Outcome{Kind: OutcomeSubmitted, Row: row, Guess: guess, Marks: marks, Status: e.status}
}

// Reset returns the engine to its initial state. The solution is kept.
func (e *Engine) Reset() {
	*e = Engine{solution: e.solution}
}

func (e *Engine) Status() Status { return e.status }

func (e *Engine) Solution() Word { return e.solution }

func (e *Engine) Hints() Hints { return e.hints }

// Cursor returns the current row and column.
func (e *Engine) Cursor() (row, col int) { return e.row, e.col }

// Snapshot copies the full state for rendering.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Grid:   e.grid,
		Row:    e.row,
		Col:    e.col,
		Hints:  e.hints,
		Status: e.status,
	}
}

// Guesses returns the submitted words, oldest first.
func (e *Engine) Guesses() []Word {
	out := make([]Word, 0, e.row)
	for r := 0; r < e.row && r < Rows; r++ {
		var w Word
		for c := 0; c < Cols; c++ {
			w[c] = e.grid[r][c].Letter
		}
		out = append(out, w)
	}
	return out
}

// Score implements the two-pass duplicate-aware evaluation.
//
// Pass 1:
//   - Exact positions are correct; the solution letter at that position leaves the pool.
//
// Pass 2:
//   - Each remaining guess letter, left to right, takes the first matching letter
//     still in the pool and is present; with none left it stays absent.
//
// A letter guessed more often than the solution holds it is marked at most as
// many times as the solution has it.
func Score(solution, guess Word) [Cols]Mark {
	var res [Cols]Mark
	pool := make([]byte, Cols)
	copy(pool, solution[:])
	var consumed [Cols]bool

	for i := range res {
		res[i] = MarkAbsent
		if guess[i] == solution[i] {
			res[i] = MarkCorrect
			pool[i] = 0
			consumed[i] = true
		}
	}

	for i := range res {
		if consumed[i] {
			continue
		}
		if j := slices.Index(pool, guess[i]); j >= 0 {
			res[i] = MarkPresent
			pool[j] = 0
		}
	}
	return res
}
