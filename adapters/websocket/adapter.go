package websocket

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"scorewatch/core"
	"scorewatch/realtime"
)

// SnapshotFunc supplies the initial state pushed to a new subscriber.
type SnapshotFunc func() core.Snapshot

type snapshotMessage struct {
	Type string `json:"type"`
	core.Snapshot
}

// Handler returns an http.Handler that upgrades to WebSocket, sends the
// initial snapshot, and then streams events from the hub until the
// client goes away.
func Handler(hub *realtime.Hub, snapshot SnapshotFunc) http.Handler {
	upgrader := gorillaws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Subscribe before snapshotting so events raced between the two
		// are buffered rather than lost.
		id, ch := hub.Subscribe(256)
		defer hub.Unsubscribe(id)

		if snapshot != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(snapshotMessage{Type: "snapshot", Snapshot: snapshot()}); err != nil {
				return
			}
		}

		for ev := range ch {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(gorillaws.TextMessage, realtime.MarshalJSON(ev)); err != nil {
				return
			}
		}
	})
}
