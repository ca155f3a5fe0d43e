// internal/game/types.go
//
// Core type definitions for the guess engine.
// Defines:
//   - Word:   a five-letter uppercase guess or solution.
//   - Mark:   per-slot / per-letter result (unmarked < absent < present < correct).
//   - Status: in_progress, won, lost.
//   - Tile, Snapshot: read-only views handed to presentation layers.

package game

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Rows = 6 // attempts per game
	Cols = 5 // letters per word
)

var (
	ErrWordLength  = errors.New("word must be exactly 5 letters")
	ErrWordLetters = errors.New("word must contain only letters A-Z")
)

// Word is a fixed-size uppercase word.
type Word [Cols]byte

// ParseWord trims, uppercases and validates s.
func ParseWord(s string) (Word, error) {
	var w Word
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != Cols {
		return w, fmt.Errorf("%q: %w", s, ErrWordLength)
	}
	for i := 0; i < Cols; i++ {
		if !isUpper(s[i]) {
			return w, fmt.Errorf("%q: %w", s, ErrWordLetters)
		}
		w[i] = s[i]
	}
	return w, nil
}

// MustWord is ParseWord for literals known to be valid.
func MustWord(s string) Word {
	w, err := ParseWord(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Word) String() string { return string(w[:]) }

// Mark represents the evaluation result for a single slot or keyboard letter.
// The numeric order is the hint rank: a stronger mark never gets replaced by a weaker one.
type Mark uint8

const (
	MarkUnmarked Mark = iota
	MarkAbsent
	MarkPresent
	MarkCorrect
)

var markNames = [...]string{
	MarkUnmarked: "unmarked",
	MarkAbsent:   "absent",
	MarkPresent:  "present",
	MarkCorrect:  "correct",
}

func (m Mark) String() string {
	if int(m) < len(markNames) {
		return markNames[m]
	}
	return fmt.Sprintf("Mark(%d)", uint8(m))
}

// MarshalText lets marks appear as their names in JSON.
func (m Mark) MarshalText() ([]byte, error) {
	if int(m) >= len(markNames) {
		return nil, fmt.Errorf("invalid mark %d", uint8(m))
	}
	return []byte(markNames[m]), nil
}

func (m *Mark) UnmarshalText(b []byte) error {
	for i, name := range markNames {
		if string(b) == name {
			*m = Mark(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mark %q", b)
}

// Status is the coarse game state.
type Status uint8

const (
	StatusInProgress Status = iota
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, v := range []Status{StatusInProgress, StatusWon, StatusLost} {
		if string(b) == v.String() {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Terminal reports whether the game is over.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Tile is one slot of the attempt grid. Letter is 0 when the slot is empty.
type Tile struct {
	Letter byte
	Mark   Mark
}

// Empty reports whether no letter has been typed into the slot.
func (t Tile) Empty() bool { return t.Letter == 0 }

// Snapshot is a value copy of the engine state.
// Row may equal Rows once the last row has been submitted.
type Snapshot struct {
	Grid   [Rows][Cols]Tile
	Row    int
	Col    int
	Hints  Hints
	Status Status
}

// Submitted returns the marks of every submitted row, oldest first.
func (s Snapshot) Submitted() [][Cols]Mark {
	n := s.Row
	if n > Rows {
		n = Rows
	}
	out := make([][Cols]Mark, 0, n)
	for r := 0; r < n; r++ {
		var marks [Cols]Mark
		for c := 0; c < Cols; c++ {
			marks[c] = s.Grid[r][c].Mark
		}
		out = append(out, marks)
	}
	return out
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
