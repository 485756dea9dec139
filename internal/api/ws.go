package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pulsenetwork/pulsenoded/internal/eventbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The node is a single-tenant device gateway, not a public browser
	// surface; any origin may open the event stream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wireEvent is the JSON frame shape pushed over /ws, discriminated by type.
type wireEvent struct {
	Type           eventbus.EventType `json:"type"`
	Block          interface{}        `json:"block,omitempty"`
	Stats          interface{}        `json:"stats,omitempty"`
	HeartbeatCount uint64             `json:"heartbeat_count,omitempty"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub := s.engine.Subscribe()
	defer sub.Cancel()

	for ev := range sub.Events() {
		frame := wireEvent{Type: ev.Type, HeartbeatCount: ev.HeartbeatCount}
		if ev.Block != nil {
			frame.Block = ev.Block
		}
		if ev.Stats != nil {
			frame.Stats = ev.Stats
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
