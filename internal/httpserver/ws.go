package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"
)

// wsError is sent back for a message the server could not apply.
type wsError struct {
	Error string `json:"error"`
}

// handleWS upgrades to a WebSocket where the client streams operations
// ({"op":"letter","letter":"A"}, {"op":"submit"}, ...) and receives the same
// replies as the REST routes, one per message.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	tok := bearerOrQuery(r)
	srv := websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()
			log.Info().Str("gameId", sess.ID).Msg("ws connected")

			// Deliver the current state first so the client can render right away.
			sess.Lock()
			st := stateOf(sess)
			sess.Unlock()
			if err := websocket.JSON.Send(conn, opRes{State: st}); err != nil {
				return
			}

			for {
				var req opReq
				if err := websocket.JSON.Receive(conn, &req); err != nil {
					if !errors.Is(err, io.EOF) {
						log.Debug().Err(err).Str("gameId", sess.ID).Msg("ws receive")
					}
					log.Info().Str("gameId", sess.ID).Msg("ws closed")
					return
				}
				if code := s.stillValid(conn.Request().Context(), tok, sess.ID); code != "" {
					_ = websocket.JSON.Send(conn, wsError{Error: code})
					log.Info().Str("gameId", sess.ID).Str("reason", code).Msg("ws closed")
					return
				}
				res, err := s.apply(conn.Request().Context(), sess, req)
				var out any = res
				if err != nil {
					out = wsError{Error: err.Error()}
				}
				if err := websocket.JSON.Send(conn, out); err != nil {
					log.Debug().Err(err).Str("gameId", sess.ID).Msg("ws send")
					return
				}
			}
		},
	}
	srv.ServeHTTP(w, r)
}

// stillValid re-checks what requireSession checked at upgrade time: the token may
// have expired and the session may have been swept since. It returns an error code
// or "".
func (s *Server) stillValid(ctx context.Context, tok, id string) string {
	if err := s.verifyToken(tok, id); err != nil {
		return "invalid_token"
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return "not_found"
	}
	return ""
}

// checkOrigin accepts only the configured client origin.
func (s *Server) checkOrigin(cfg *websocket.Config, req *http.Request) error {
	origin, err := websocket.Origin(cfg, req)
	if err != nil {
		return err
	}
	if origin == nil || origin.String() != s.cfg.ClientOrigin {
		return fmt.Errorf("origin %v not allowed", origin)
	}
	cfg.Origin = origin
	return nil
}
