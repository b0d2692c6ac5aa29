package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/draftleague/league-draft-backend/internal/coordinator"
	"github.com/draftleague/league-draft-backend/internal/session"
	"github.com/draftleague/league-draft-backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 60 * time.Second
)

// Handler upgrades a client onto a draft's snapshot feed. Every committed
// transition produces one snapshot push; Pick/Pass commands received on
// the socket are forwarded through the session actor and their failures
// come back as Error messages on the same socket.
func Handler(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		c.Inbox() <- coordinator.GetSession{ID: sessionID, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := randID(8)

		s.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		defer func() { s.Inbox() <- session.Leave{ClientID: clientID} }()

		// Writer goroutine: snapshot feed.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				writeMessage(writeCtx, conn, types.ServerMessage{Type: "StateSnapshot", Snapshot: &snap})
			}
		}()

		// Reader loop: commands from the captain.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeMessage(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			res, ok := dispatch(s, cm)
			if !ok {
				writeMessage(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "unknown type"})
				continue
			}
			if res.Err != nil {
				// The accepted state already went out on the feed; only
				// the failure needs a direct reply.
				writeMessage(r.Context(), conn, types.ServerMessage{Type: "Error", Error: res.Err.Error()})
			}
		}
	}
}

func dispatch(s *session.Session, cm types.ClientMessage) (session.Result, bool) {
	reply := make(chan session.Result, 1)
	switch cm.Type {
	case "Pick":
		s.Inbox() <- session.Pick{ActorID: cm.ActorID, TargetID: cm.TargetID, Reply: reply}
	case "Pass":
		s.Inbox() <- session.Pass{ActorID: cm.ActorID, Reply: reply}
	default:
		return session.Result{}, false
	}
	return <-reply, true
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
