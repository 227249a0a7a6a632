package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/registry"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection and streams room events to the client.
// Actions travel over the HTTP API; this socket is delivery-only, so the
// read side exists purely to notice the peer going away.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomId")
		playerID := r.URL.Query().Get("playerId")
		if roomID == "" || playerID == "" {
			http.Error(w, "missing roomId or playerId", http.StatusBadRequest)
			return
		}

		// Authorization is checked before the upgrade: an unauthorized
		// subscribe attempt fails the request rather than silently
		// closing a stream.
		events, cancel, err := reg.Subscribe(roomID, playerID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		defer cancel()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log.Debug("subscriber attached",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer writeCancel()
			for ev := range events {
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				ctx, ctxCancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				ctxCancel()
				if err != nil {
					return
				}
			}
			// Channel closed: the room was torn down or we fell behind.
			conn.Close(websocket.StatusNormalClosure, "room closed")
		}()

		for {
			if _, _, err := conn.Read(writeCtx); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
