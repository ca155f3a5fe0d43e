package tui

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/lemonle/internal/game"
	"github.com/robalobadob/lemonle/internal/journal"
	"github.com/robalobadob/lemonle/internal/share"
	"github.com/robalobadob/lemonle/internal/words"
)

// Recorder stores finished rounds. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, r journal.Result) error
}

// effect tells the view what to do after an action.
type effect uint8

const (
	effNone effect = iota
	effRedraw
	effFinished // show the end-of-game dialog
	effHelp
)

// round is the screen model: the engine plus the notices around it.
// All methods run on the UI goroutine.
type round struct {
	eng    *game.Engine
	taunts *words.Picker
	header string
	rec    Recorder

	id    string // journal session id for this terminal run
	n     int    // rounds started before the current one
	toast string
	shake bool // last submit was rejected
}

func newRound(solution game.Word, taunts *words.Picker, header string, rec Recorder) *round {
	return &round{
		eng:    game.New(solution),
		taunts: taunts,
		header: header,
		rec:    rec,
		id:     uuid.NewString(),
		toast:  words.MsgStart,
	}
}

func (r *round) handle(a action, letter byte) effect {
	switch a {
	case actLetter:
		r.shake = false
		if r.eng.AddLetter(letter) {
			return effRedraw
		}
	case actBackspace:
		r.shake = false
		if r.eng.Backspace() {
			return effRedraw
		}
	case actSubmit:
		return r.submit()
	case actReset:
		r.reset()
		return effRedraw
	case actHelp:
		return effHelp
	}
	return effNone
}

func (r *round) submit() effect {
	out := r.eng.Submit()
	switch out.Kind {
	case game.OutcomeIgnored:
		return effNone
	case game.OutcomeRejected:
		r.toast = words.MsgNotEnough
		r.shake = true
		return effRedraw
	}

	r.shake = false
	log.Debug().Str("guess", out.Guess.String()).Str("line", share.Line(out.Marks)).Str("status", out.Status.String()).Msg("guess")
	switch out.Status {
	case game.StatusWon:
		r.toast = words.MsgWon
	case game.StatusLost:
		r.toast = words.MsgLostPrefix + r.eng.Solution().String()
	default:
		r.toast = r.taunts.Next()
		return effRedraw
	}
	r.record(out)
	return effFinished
}

func (r *round) reset() {
	r.eng.Reset()
	r.n++
	r.toast = words.MsgStart
	r.shake = false
}

// shareText is the end-of-game summary shown in the dialog.
func (r *round) shareText() string {
	return share.Render(r.header, r.eng.Snapshot())
}

func (r *round) record(out game.Outcome) {
	if r.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res := journal.Result{
		SessionID: r.id,
		Round:     r.n,
		Solution:  r.eng.Solution().String(),
		Status:    out.Status.String(),
		Attempts:  out.Row + 1,
		Grid:      share.Grid(r.eng.Snapshot()),
	}
	if err := r.rec.Record(ctx, res); err != nil {
		log.Warn().Err(err).Msg("record result")
	}
}
