package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typrr/internal/auth"
	"github.com/verte-zerg/typrr/internal/engine"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
)

// liveReadLimit caps a client frame; key messages are a few bytes.
const liveReadLimit = 4096

// liveMessage is what a live client sends.
type liveMessage struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

// liveState is sent after every key or reset.
type liveState struct {
	Type      string  `json:"type"`
	State     string  `json:"state"`
	Input     string  `json:"input"`
	Position  int     `json:"position"`
	Length    int     `json:"length"`
	Typed     int     `json:"typed"`
	Errors    int     `json:"errors"`
	Correct   int     `json:"correct"`
	WPM       float64 `json:"wpm"`
	Accuracy  float64 `json:"accuracy"`
	ElapsedMs int64   `json:"elapsedMs"`
	Accepted  bool    `json:"accepted"`
	Finished  bool    `json:"finished"`
}

// liveEvent carries everything that is not a state update.
type liveEvent struct {
	Type    string         `json:"type"`
	Snippet *model.Snippet `json:"snippet,omitempty"`
	Attempt *model.Attempt `json:"attempt,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// liveConn serializes writes; the read loop and background saves both write.
type liveConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *liveConn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snip, ok := s.liveSnippet(q.Get("snippet"))
	if !ok {
		respondError(w, "Snippet not found", http.StatusNotFound)
		return
	}
	mode := model.Mode(q.Get("mode"))
	if mode == "" {
		mode = model.ModePractice
	}
	if !mode.Valid() {
		respondError(w, "Unknown mode", http.StatusBadRequest)
		return
	}
	var claims *auth.Claims
	token := bearerToken(r)
	if token == "" {
		token = q.Get("token")
	}
	if token != "" {
		parsed, err := s.issuer.Parse(token)
		if err != nil {
			respondError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		claims = parsed
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("websocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(liveReadLimit)
	lc := &liveConn{conn: conn}
	defer func() {
		// Best-effort close.
		_ = conn.Close()
	}()
	var saves sync.WaitGroup
	defer saves.Wait()

	session := engine.NewSession(snip.Text, engine.WithOnFinish(func(res engine.Result) {
		if claims == nil {
			return
		}
		attempt := model.Attempt{
			UserID:     claims.UserID,
			SnippetID:  snip.ID,
			Language:   snip.Lang,
			Difficulty: snip.Difficulty,
			Category:   snip.Category,
			WPM:        res.WPM,
			Accuracy:   res.Accuracy,
			Errors:     res.Errors,
			TimeMs:     res.Elapsed.Milliseconds(),
			Mode:       mode,
			CreatedAt:  res.FinishedAt,
		}
		saves.Add(1)
		go func() {
			defer saves.Done()
			s.saveLive(lc, attempt)
		}()
	}))

	if err := lc.send(liveEvent{Type: "snippet", Snippet: &snip}); err != nil {
		return
	}
	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logf("websocket error: %v", err)
			}
			return
		}
		var outcome engine.Outcome
		switch msg.Type {
		case "key":
			key, ok := engine.ParseKey(msg.Key)
			if !ok {
				if err := lc.send(liveEvent{Type: "error", Error: "unknown key"}); err != nil {
					return
				}
				continue
			}
			outcome = session.Apply(key, s.now())
		case "reset":
			session.Reset()
			outcome.Accepted = true
		case "ping":
			if err := lc.send(liveEvent{Type: "pong"}); err != nil {
				return
			}
			continue
		default:
			if err := lc.send(liveEvent{Type: "error", Error: "unknown message type"}); err != nil {
				return
			}
			continue
		}
		if err := lc.send(s.stateOf(session, outcome)); err != nil {
			return
		}
	}
}

func (s *Server) stateOf(session *engine.Session, outcome engine.Outcome) liveState {
	m := session.Metrics(s.now())
	input := session.Input()
	return liveState{
		Type:      "state",
		State:     session.State().String(),
		Input:     string(input),
		Position:  len(input),
		Length:    len(session.Target()),
		Typed:     m.Typed,
		Errors:    m.Errors,
		Correct:   m.Correct,
		WPM:       m.WPM,
		Accuracy:  m.Accuracy,
		ElapsedMs: m.Elapsed.Milliseconds(),
		Accepted:  outcome.Accepted,
		Finished:  session.Finished(),
	}
}

func (s *Server) saveLive(lc *liveConn, attempt model.Attempt) {
	// Outlives the request context: the client may disconnect right after finishing.
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTime)
	defer cancel()
	saved, err := s.store.InsertAttempt(ctx, attempt)
	if err != nil {
		s.logf("failed to save live attempt: %v", err)
		_ = lc.send(liveEvent{Type: "error", Error: "Failed to save attempt"})
		return
	}
	_ = lc.send(liveEvent{Type: "saved", Attempt: &saved})
}

// liveSnippet resolves id, or the snippet of the day when id is empty.
func (s *Server) liveSnippet(id string) (model.Snippet, bool) {
	if s.catalog == nil || s.catalog.Len() == 0 {
		return model.Snippet{}, false
	}
	if id == "" {
		return s.catalog.Daily(progress.Day(s.now())), true
	}
	return s.catalog.ByID(id)
}
