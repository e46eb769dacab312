package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/book"
	"github.com/damzee/damzee/move"
	"github.com/damzee/damzee/movegen"
	"github.com/damzee/damzee/search"
)

func testHandler(t *testing.T, probe book.Probe) *Handler {
	t.Helper()
	settings := search.DefaultSettings()
	settings.MaxDepth = 3
	settings.TimeLimit = 500 * time.Millisecond
	settings.TTSizeMB = 1
	h, err := NewHandler(board.New(), settings, probe)
	if err != nil {
		t.Fatalf("building handler: %v", err)
	}
	return h
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMoveEndpoint(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)
	w := post(t, h, "/api/move", MoveRequest{
		Board:       board.Initial().ToExternalArray(),
		Player:      "white",
		TimeLimitMs: 200,
	})
	is.Equal(w.Code, http.StatusOK)

	var resp MoveResponse
	is.NoErr(json.NewDecoder(w.Body).Decode(&resp))
	is.Equal(resp.Status, "ok")
	is.True(resp.DepthReached >= 1)
	is.True(resp.NodesEvaluated > 0)
	is.True(!resp.FromBook)

	// The served move must be legal in the submitted position.
	parsed, err := move.ParseNotation(resp.Notation)
	is.NoErr(err)
	gen := movegen.NewGenerator(board.New())
	found := false
	for _, m := range gen.GenerateLegal(board.Initial(), board.White) {
		if parsed.SameSkeleton(m) {
			found = true
		}
	}
	is.True(found)
}

func TestMoveEndpointRejectsBadInput(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)

	// Malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/api/move", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	is.Equal(w.Code, http.StatusBadRequest)

	// Board array too short.
	w = post(t, h, "/api/move", MoveRequest{Board: make([]int, 10), Player: "white"})
	is.Equal(w.Code, http.StatusBadRequest)

	// Unknown player token.
	w = post(t, h, "/api/move", MoveRequest{Board: board.Initial().ToExternalArray(), Player: "red"})
	is.Equal(w.Code, http.StatusBadRequest)

	// No pieces for the requested side.
	empty := make([]int, 51)
	empty[28] = board.CodeBlackMan
	w = post(t, h, "/api/move", MoveRequest{Board: empty, Player: "white"})
	is.Equal(w.Code, http.StatusBadRequest)

	// Negative time limit.
	w = post(t, h, "/api/move", MoveRequest{
		Board: board.Initial().ToExternalArray(), Player: "white", TimeLimitMs: -1,
	})
	is.Equal(w.Code, http.StatusBadRequest)
}

func TestMoveEndpointGameOver(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)
	// A lone white man stuck on its promotion row: game over for White.
	arr := make([]int, 51)
	arr[3] = board.CodeWhiteMan
	arr[50] = board.CodeBlackMan
	w := post(t, h, "/api/move", MoveRequest{Board: arr, Player: "white"})
	is.Equal(w.Code, http.StatusOK)

	var resp MoveResponse
	is.NoErr(json.NewDecoder(w.Body).Decode(&resp))
	is.Equal(resp.Status, "game_over")
	is.Equal(resp.Notation, "")
}

func TestMoveEndpointBookHit(t *testing.T) {
	is := is.New(t)
	b := book.NewStatic()
	b.Add(board.Initial(), board.White, book.Entry{Move: move.NewQuiet(32, 28), Score: 12})
	h := testHandler(t, b)

	w := post(t, h, "/api/move", MoveRequest{
		Board:  board.Initial().ToExternalArray(),
		Player: "white",
	})
	is.Equal(w.Code, http.StatusOK)

	var resp MoveResponse
	is.NoErr(json.NewDecoder(w.Body).Decode(&resp))
	is.Equal(resp.Status, "ok")
	is.True(resp.FromBook)
	is.Equal(resp.Notation, "32-28")
	is.Equal(resp.Score, 12)
	is.Equal(resp.NodesEvaluated, int64(0))
}

func TestLegalEndpoint(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)
	w := post(t, h, "/api/legal", LegalRequest{
		Board:  board.Initial().ToExternalArray(),
		Player: "black",
	})
	is.Equal(w.Code, http.StatusOK)

	var resp LegalResponse
	is.NoErr(json.NewDecoder(w.Body).Decode(&resp))
	is.Equal(resp.Status, "ok")
	is.Equal(len(resp.Moves), 9)
	for _, m := range resp.Moves {
		is.True(m.From >= 1 && m.From <= 50)
		is.True(m.To >= 1 && m.To <= 50)
		is.Equal(len(m.CapturedSquares), 0)
	}
}

func TestLegalEndpointGameOver(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)
	arr := make([]int, 51)
	arr[3] = board.CodeWhiteMan
	arr[50] = board.CodeBlackMan
	w := post(t, h, "/api/legal", LegalRequest{Board: arr, Player: "white"})
	is.Equal(w.Code, http.StatusOK)

	var resp LegalResponse
	is.NoErr(json.NewDecoder(w.Body).Decode(&resp))
	is.Equal(resp.Status, "game_over")
	is.Equal(len(resp.Moves), 0)
}

func TestRouting(t *testing.T) {
	is := is.New(t)
	h := testHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/move", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	is.Equal(w.Code, http.StatusMethodNotAllowed)

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	is.Equal(w.Code, http.StatusNotFound)
}
