package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/lemonle/internal/game"
	"github.com/robalobadob/lemonle/internal/journal"
	"github.com/robalobadob/lemonle/internal/share"
	"github.com/robalobadob/lemonle/internal/store"
	"github.com/robalobadob/lemonle/internal/words"
)

// Operation names, shared by the REST routes and the WebSocket channel.
const (
	opLetter    = "letter"
	opBackspace = "backspace"
	opSubmit    = "submit"
	opReset     = "reset"
)

var (
	errUnknownOp = errors.New("unknown_op")
	errBadLetter = errors.New("bad_letter")
)

// opReq is the body of POST /game/{id}/letter and of every WebSocket message.
type opReq struct {
	Op     string `json:"op,omitempty"`
	Letter string `json:"letter,omitempty"`
}

// tileRes is one grid slot. Letter is "" for an empty slot.
type tileRes struct {
	Letter string    `json:"letter"`
	Mark   game.Mark `json:"mark"`
}

// stateRes is the snapshot sent to clients.
type stateRes struct {
	GameID   string               `json:"gameId"`
	Round    int                  `json:"round"`
	Grid     [][]tileRes          `json:"grid"`
	Row      int                  `json:"row"`
	Col      int                  `json:"col"`
	Hints    map[string]game.Mark `json:"hints"`
	Status   game.Status          `json:"status"`
	Solution string               `json:"solution,omitempty"` // only once lost
}

// opRes answers every operation. Applied is set for letter/backspace,
// Outcome (and friends) for submit.
type opRes struct {
	Applied *bool       `json:"applied,omitempty"`
	Outcome string      `json:"outcome,omitempty"` // submitted | rejected | ignored
	Reason  string      `json:"reason,omitempty"`  // incomplete_row
	Marks   []game.Mark `json:"marks,omitempty"`
	Message string      `json:"message,omitempty"`
	State   stateRes    `json:"state"`
}

type newGameRes struct {
	GameID string   `json:"gameId"`
	Token  string   `json:"token"`
	State  stateRes `json:"state"`
}

// handleNewGame creates a session with a fresh engine and returns its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create(r.Context(), s.cfg.Word)
	if err != nil {
		log.Error().Err(err).Msg("create session")
		http.Error(w, `{"error":"create_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, _, err := s.signToken(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	sess.Lock()
	st := stateOf(sess)
	sess.Unlock()

	log.Info().Str("gameId", sess.ID).Int("live", s.store.Len()).Msg("new game")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, Token: tok, State: st})
}

// handleState returns the current snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Lock()
	st := stateOf(sess)
	sess.Unlock()
	_ = json.NewEncoder(w).Encode(st)
}

// handleOp adapts one operation to a REST route.
func (s *Server) handleOp(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := opReq{Op: op}
		if op == opLetter {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
				return
			}
			req.Op = op
		}
		res, err := s.apply(r.Context(), sessionFrom(r.Context()), req)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// handleShare returns the share text once the round is over.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Lock()
	snap := sess.Engine.Snapshot()
	sess.Unlock()

	if !snap.Status.Terminal() {
		http.Error(w, `{"error":"in_progress"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"text": share.Render(s.cfg.ShareHeader, snap)})
}

// apply runs one engine operation under the session lock and builds the reply.
// A round that just ended is recorded in the journal (best effort).
func (s *Server) apply(ctx context.Context, sess *store.Session, req opReq) (opRes, error) {
	var res opRes
	var finished *journal.Result

	sess.Lock()
	sess.Touch()
	switch req.Op {
	case opLetter:
		if len(req.Letter) != 1 {
			sess.Unlock()
			return res, errBadLetter
		}
		applied := sess.Engine.AddLetter(req.Letter[0])
		res.Applied = &applied
	case opBackspace:
		applied := sess.Engine.Backspace()
		res.Applied = &applied
	case opSubmit:
		out := sess.Engine.Submit()
		res.Outcome = out.Kind.String()
		res.Reason = out.Reason.String()
		switch out.Kind {
		case game.OutcomeRejected:
			res.Message = words.MsgNotEnough
		case game.OutcomeSubmitted:
			res.Marks = out.Marks[:]
			switch out.Status {
			case game.StatusWon:
				res.Message = words.MsgWon
			case game.StatusLost:
				res.Message = words.MsgLostPrefix + sess.Engine.Solution().String()
			default:
				res.Message = s.nextTaunt()
			}
			if out.Status.Terminal() {
				finished = &journal.Result{
					SessionID: sess.ID,
					Round:     sess.Round,
					Solution:  sess.Engine.Solution().String(),
					Status:    out.Status.String(),
					Attempts:  out.Row + 1,
					Grid:      share.Grid(sess.Engine.Snapshot()),
				}
			}
		}
	case opReset:
		sess.Engine.Reset()
		sess.Round++
	default:
		sess.Unlock()
		return res, errUnknownOp
	}
	res.State = stateOf(sess)
	sess.Unlock()

	if finished != nil {
		s.record(ctx, *finished)
	}
	return res, nil
}

func (s *Server) record(ctx context.Context, r journal.Result) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, r); err != nil {
		log.Warn().Err(err).Str("gameId", r.SessionID).Msg("record result")
		return
	}
	log.Info().Str("gameId", r.SessionID).Str("status", r.Status).Int("attempts", r.Attempts).Msg("round finished")
}

// stateOf converts the engine snapshot. Call with the session locked.
func stateOf(sess *store.Session) stateRes {
	snap := sess.Engine.Snapshot()
	st := stateRes{
		GameID: sess.ID,
		Round:  sess.Round,
		Grid:   make([][]tileRes, game.Rows),
		Row:    snap.Row,
		Col:    snap.Col,
		Hints:  make(map[string]game.Mark, 26),
		Status: snap.Status,
	}
	for r := range snap.Grid {
		st.Grid[r] = make([]tileRes, game.Cols)
		for c, t := range snap.Grid[r] {
			if !t.Empty() {
				st.Grid[r][c].Letter = string(t.Letter)
			}
			st.Grid[r][c].Mark = t.Mark
		}
	}
	for l := byte('A'); l <= 'Z'; l++ {
		st.Hints[string(l)] = snap.Hints.Of(l)
	}
	if snap.Status == game.StatusLost {
		st.Solution = sess.Engine.Solution().String()
	}
	return st
}
