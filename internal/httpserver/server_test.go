package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/websocket"

	"github.com/robalobadob/lemonle/internal/config"
	"github.com/robalobadob/lemonle/internal/game"
	"github.com/robalobadob/lemonle/internal/journal"
	"github.com/robalobadob/lemonle/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// fakeRecorder keeps results in memory.
type fakeRecorder struct {
	mu      sync.Mutex
	results []journal.Result
}

func (f *fakeRecorder) Record(ctx context.Context, r journal.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return nil
}

func (f *fakeRecorder) Recent(ctx context.Context, limit int) ([]journal.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.results) {
		limit = len(f.results)
	}
	return append([]journal.Result(nil), f.results[:limit]...), nil
}

func (f *fakeRecorder) Summary(ctx context.Context) (journal.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return journal.Summary{Played: len(f.results)}, nil
}

func (f *fakeRecorder) recorded() []journal.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]journal.Result(nil), f.results...)
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.JWTSecret = "test-secret"
	cfg.Word = game.MustWord("LEMON")
	cfg.Taunts = []string{"nope"}
	cfg.ShareHeader = "lemonle test"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	return New(cfg, store.NewMemoryStore(), rec), rec
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func newGame(t *testing.T, s *Server) newGameRes {
	t.Helper()
	w := do(t, s, http.MethodPost, "/game/new", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /game/new = %d %s", w.Code, w.Body)
	}
	return decode[newGameRes](t, w)
}

func typeWord(t *testing.T, s *Server, g newGameRes, word string) {
	t.Helper()
	for _, l := range word {
		w := do(t, s, http.MethodPost, "/game/"+g.GameID+"/letter", g.Token, opReq{Letter: string(l)})
		if w.Code != http.StatusOK {
			t.Fatalf("letter %c = %d %s", l, w.Code, w.Body)
		}
	}
}

func submit(t *testing.T, s *Server, g newGameRes) opRes {
	t.Helper()
	w := do(t, s, http.MethodPost, "/game/"+g.GameID+"/submit", g.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d %s", w.Code, w.Body)
	}
	return decode[opRes](t, w)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	w := do(t, s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("health = %d %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestNewGameState(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	g := newGame(t, s)
	if g.GameID == "" || g.Token == "" {
		t.Fatalf("new game = %+v", g)
	}
	if g.State.Status != game.StatusInProgress || len(g.State.Grid) != game.Rows || len(g.State.Hints) != 26 {
		t.Errorf("initial state = %+v", g.State)
	}

	w := do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET state = %d %s", w.Code, w.Body)
	}
	raw := w.Body.String()
	for _, want := range []string{`"status":"in_progress"`, `"A":"unmarked"`, `"mark":"unmarked"`} {
		if !strings.Contains(raw, want) {
			t.Errorf("state JSON missing %s: %s", want, raw)
		}
	}
	if strings.Contains(raw, "LEMON") {
		t.Error("solution leaked while in progress")
	}
}

func TestTokenGating(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := newGame(t, s)
	b := newGame(t, s)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": a.GameID, "exp": time.Now().Add(-time.Hour).Unix(), "iat": time.Now().Add(-2 * time.Hour).Unix(),
	})
	expiredTok, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": a.GameID, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/game/" + a.GameID, "", http.StatusUnauthorized},
		{"other game's token", "/game/" + a.GameID, b.Token, http.StatusUnauthorized},
		{"expired", "/game/" + a.GameID, expiredTok, http.StatusUnauthorized},
		{"wrong secret", "/game/" + a.GameID, forged, http.StatusUnauthorized},
		{"query token", "/game/" + a.GameID + "?token=" + a.Token, "", http.StatusOK},
		{"valid", "/game/" + a.GameID, a.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, s, http.MethodGet, tt.path, tt.token, nil); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body)
			}
		})
	}

	// A valid token for a session that no longer exists.
	if err := s.store.Delete(context.Background(), a.GameID); err != nil {
		t.Fatal(err)
	}
	if w := do(t, s, http.MethodGet, "/game/"+a.GameID, a.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted session = %d, want 404", w.Code)
	}
}

func TestIncompleteRowRejected(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	g := newGame(t, s)
	typeWord(t, s, g, "LEM")

	res := submit(t, s, g)
	if res.Outcome != "rejected" || res.Reason != "incomplete_row" || res.Message == "" {
		t.Errorf("submit = %+v", res)
	}
	if res.State.Row != 0 || res.State.Col != 3 {
		t.Errorf("cursor moved: (%d,%d)", res.State.Row, res.State.Col)
	}
}

func TestLetterAndBackspace(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	g := newGame(t, s)

	w := do(t, s, http.MethodPost, "/game/"+g.GameID+"/backspace", g.Token, nil)
	if res := decode[opRes](t, w); res.Applied == nil || *res.Applied {
		t.Errorf("backspace at col 0 = %+v", res)
	}

	w = do(t, s, http.MethodPost, "/game/"+g.GameID+"/letter", g.Token, opReq{Letter: "q"})
	res := decode[opRes](t, w)
	if res.Applied == nil || !*res.Applied || res.State.Grid[0][0].Letter != "Q" {
		t.Errorf("letter = %+v", res)
	}

	w = do(t, s, http.MethodPost, "/game/"+g.GameID+"/letter", g.Token, opReq{Letter: "7"})
	if res := decode[opRes](t, w); res.Applied == nil || *res.Applied {
		t.Errorf("digit applied: %+v", res)
	}

	w = do(t, s, http.MethodPost, "/game/"+g.GameID+"/letter", g.Token, opReq{Letter: "AB"})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_letter") {
		t.Errorf("two letters = %d %s", w.Code, w.Body)
	}

	w = do(t, s, http.MethodPost, "/game/"+g.GameID+"/backspace", g.Token, nil)
	if res := decode[opRes](t, w); res.Applied == nil || !*res.Applied || res.State.Col != 0 {
		t.Errorf("backspace = %+v", res)
	}
}

func TestWinRecordsAndShares(t *testing.T) {
	s, rec := newTestServer(t, testConfig())
	g := newGame(t, s)

	if w := do(t, s, http.MethodGet, "/game/"+g.GameID+"/share", g.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("share in progress = %d, want 409", w.Code)
	}

	typeWord(t, s, g, "CRANE")
	res := submit(t, s, g)
	if res.Outcome != "submitted" || res.Message != "nope" || len(res.Marks) != game.Cols {
		t.Fatalf("first submit = %+v", res)
	}
	if res.State.Hints["N"] != game.MarkPresent || res.State.Hints["C"] != game.MarkAbsent {
		t.Errorf("hints = %v", res.State.Hints)
	}

	typeWord(t, s, g, "LEMON")
	res = submit(t, s, g)
	if res.State.Status != game.StatusWon {
		t.Fatalf("status = %v, want won", res.State.Status)
	}

	got := rec.recorded()
	if len(got) != 1 || got[0].Status != "won" || got[0].Attempts != 2 || got[0].SessionID != g.GameID {
		t.Fatalf("recorded = %+v", got)
	}
	if got[0].Grid != "⬛⬛⬛🟨🟨\n🟩🟩🟩🟩🟩" {
		t.Errorf("grid = %q", got[0].Grid)
	}

	// terminal lock: further input is ignored and nothing new is recorded
	typeWord(t, s, g, "A")
	if res := submit(t, s, g); res.Outcome != "ignored" {
		t.Errorf("submit after win = %+v", res)
	}
	if len(rec.recorded()) != 1 {
		t.Error("ignored submit was recorded")
	}

	w := do(t, s, http.MethodGet, "/game/"+g.GameID+"/share", g.Token, nil)
	text := decode[map[string]string](t, w)["text"]
	if text != "lemonle test\n⬛⬛⬛🟨🟨\n🟩🟩🟩🟩🟩\n" {
		t.Errorf("share = %q", text)
	}
}

func TestLossRevealsSolutionAndResetStartsNewRound(t *testing.T) {
	s, rec := newTestServer(t, testConfig())
	g := newGame(t, s)

	var res opRes
	for i := 0; i < game.Rows; i++ {
		typeWord(t, s, g, "CRANE")
		res = submit(t, s, g)
	}
	if res.State.Status != game.StatusLost || res.State.Solution != "LEMON" || !strings.Contains(res.Message, "LEMON") {
		t.Fatalf("after 6 misses = %+v", res)
	}

	w := do(t, s, http.MethodPost, "/game/"+g.GameID+"/reset", g.Token, nil)
	res = decode[opRes](t, w)
	if res.State.Status != game.StatusInProgress || res.State.Row != 0 || res.State.Round != 1 || res.State.Solution != "" {
		t.Errorf("after reset = %+v", res.State)
	}

	typeWord(t, s, g, "LEMON")
	submit(t, s, g)
	got := rec.recorded()
	if len(got) != 2 || got[0].Round != 0 || got[1].Round != 1 || got[0].Status != "lost" {
		t.Errorf("recorded = %+v", got)
	}
}

func TestResultsAdminAuth(t *testing.T) {
	cfg := testConfig()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg.AdminHash = string(hash)
	s, _ := newTestServer(t, cfg)

	w := do(t, s, http.MethodGet, "/results", "", nil)
	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") == "" {
		t.Errorf("no auth = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/results/summary", nil)
	req.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/results/summary", nil)
	req.SetBasicAuth("admin", "hunter22")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"played":0`) {
		t.Errorf("summary = %d %s", w.Code, w.Body)
	}
}

func TestResultsWithoutJournal(t *testing.T) {
	s := New(testConfig(), store.NewMemoryStore(), nil)
	if w := do(t, s, http.MethodGet, "/results", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("results = %d, want 503", w.Code)
	}

	g := newGame(t, s)
	typeWord(t, s, g, "LEMON")
	if res := submit(t, s, g); res.State.Status != game.StatusWon {
		t.Errorf("play without journal = %+v", res)
	}
}

func TestResultsLimit(t *testing.T) {
	s, rec := newTestServer(t, testConfig())
	for i := 0; i < 3; i++ {
		_ = rec.Record(context.Background(), journal.Result{SessionID: "s", Round: i, Status: "won", Attempts: 1})
	}
	w := do(t, s, http.MethodGet, "/results?limit=2", "", nil)
	if rows := decode[[]journal.Result](t, w); len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
	if w := do(t, s, http.MethodGet, "/results?limit=-1", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", w.Code)
	}
}

func TestWebSocketPlay(t *testing.T) {
	cfg := testConfig()
	s, rec := newTestServer(t, cfg)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	g := newGame(t, s)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/ws?token=" + g.Token

	if _, err := websocket.Dial(url, "", "http://evil.example"); err == nil {
		t.Error("foreign origin accepted")
	}

	conn, err := websocket.Dial(url, "", cfg.ClientOrigin)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	var hello opRes
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		t.Fatalf("receive hello: %v", err)
	}
	if hello.State.GameID != g.GameID {
		t.Errorf("hello = %+v", hello.State)
	}

	send := func(req opReq) map[string]any {
		t.Helper()
		if err := websocket.JSON.Send(conn, req); err != nil {
			t.Fatalf("send %+v: %v", req, err)
		}
		var out map[string]any
		if err := websocket.JSON.Receive(conn, &out); err != nil {
			t.Fatalf("receive: %v", err)
		}
		return out
	}

	if out := send(opReq{Op: "dance"}); out["error"] != "unknown_op" {
		t.Errorf("unknown op = %v", out)
	}
	if out := send(opReq{Op: opSubmit}); out["reason"] != "incomplete_row" {
		t.Errorf("early submit = %v", out)
	}
	for _, l := range "LEMON" {
		if out := send(opReq{Op: opLetter, Letter: string(l)}); out["applied"] != true {
			t.Fatalf("letter %c = %v", l, out)
		}
	}
	out := send(opReq{Op: opSubmit})
	state, _ := out["state"].(map[string]any)
	if out["outcome"] != "submitted" || state["status"] != "won" {
		t.Errorf("submit = %v", out)
	}
	if len(rec.recorded()) != 1 {
		t.Error("websocket win was not recorded")
	}
}

func TestRepeatedTauntsDoNotStallOtherSessions(t *testing.T) {
	cfg := testConfig()
	cfg.Taunts = []string{"nope", "nope"}
	s, _ := newTestServer(t, cfg)
	a, b := newGame(t, s), newGame(t, s)

	guess := func(g newGameRes) <-chan opRes {
		done := make(chan opRes, 1)
		go func() {
			var buf bytes.Buffer
			w := httptest.NewRecorder()
			for _, l := range "CRANE" {
				buf.Reset()
				_ = json.NewEncoder(&buf).Encode(opReq{Letter: string(l)})
				req := httptest.NewRequest(http.MethodPost, "/game/"+g.GameID+"/letter", &buf)
				req.Header.Set("Authorization", "Bearer "+g.Token)
				s.Router().ServeHTTP(httptest.NewRecorder(), req)
			}
			req := httptest.NewRequest(http.MethodPost, "/game/"+g.GameID+"/submit", nil)
			req.Header.Set("Authorization", "Bearer "+g.Token)
			s.Router().ServeHTTP(w, req)
			var res opRes
			_ = json.NewDecoder(w.Body).Decode(&res)
			done <- res
		}()
		return done
	}

	for i, g := range []newGameRes{a, a, b} {
		select {
		case res := <-guess(g):
			if res.Message != "nope" {
				t.Errorf("guess %d message = %q", i+1, res.Message)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("guess %d did not finish", i+1)
		}
	}
}

func TestNotFoundIsValidJSON(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	w := do(t, s, http.MethodGet, "/no%22where", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["error"] != "not_found" || body["path"] != `/no"where` {
		t.Errorf("body = %v", body)
	}
}

func dialGame(t *testing.T, ts *httptest.Server, id, token, origin string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + id + "/ws?token=" + token
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	var hello opRes
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		t.Fatalf("receive hello: %v", err)
	}
	return conn
}

func TestWebSocketClosesForSweptSession(t *testing.T) {
	cfg := testConfig()
	s, _ := newTestServer(t, cfg)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	g := newGame(t, s)
	conn := dialGame(t, ts, g.GameID, g.Token, cfg.ClientOrigin)
	defer conn.Close()

	if err := s.store.Delete(context.Background(), g.GameID); err != nil {
		t.Fatal(err)
	}
	if err := websocket.JSON.Send(conn, opReq{Op: opLetter, Letter: "L"}); err != nil {
		t.Fatal(err)
	}
	var out wsError
	if err := websocket.JSON.Receive(conn, &out); err != nil || out.Error != "not_found" {
		t.Fatalf("reply = %+v, %v", out, err)
	}
	var more opRes
	if err := websocket.JSON.Receive(conn, &more); err == nil {
		t.Error("connection still open after the session was dropped")
	}
}

func TestWebSocketClosesAtTokenExpiry(t *testing.T) {
	cfg := testConfig()
	s, _ := newTestServer(t, cfg)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	g := newGame(t, s)
	short, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": g.GameID, "exp": time.Now().Add(2 * time.Second).Unix(), "iat": time.Now().Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	conn := dialGame(t, ts, g.GameID, short, cfg.ClientOrigin)
	defer conn.Close()

	time.Sleep(3100 * time.Millisecond)
	if err := websocket.JSON.Send(conn, opReq{Op: opSubmit}); err != nil {
		t.Fatal(err)
	}
	var out wsError
	if err := websocket.JSON.Receive(conn, &out); err != nil || out.Error != "invalid_token" {
		t.Fatalf("reply = %+v, %v", out, err)
	}
}
