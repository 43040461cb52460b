package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/hongnam/internal/adapters/nats"
	"github.com/samirrijal/hongnam/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to event channels.
type wsMessage struct {
	Action   string `json:"action"`   // "subscribe" | "unsubscribe"
	Channel  string `json:"channel"`  // "checkins" | "restrooms"
	Restroom string `json:"restroom"` // restroom id filter for checkins (optional, "" = all)
}

// wsEnvelope tags every frame sent to the client with its source.
type wsEnvelope struct {
	Type string      `json:"type"` // "notice" | "checkin" | "restroom" | "status" | "error"
	Data interface{} `json:"data"`
}

// WebSocketHandler streams session notices to the client as they are
// raised. When an event bus is connected clients can also subscribe to
// check-in reports and newly added restrooms:
//
//	{"action":"subscribe","channel":"checkins","restroom":"1"}
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		reply := func(kind string, msg map[string]string) {
			_ = writeJSON(wsEnvelope{Type: kind, Data: msg})
		}

		notices, unsubscribe := deps.Session.Subscribe()
		defer unsubscribe()

		// Notice relay + keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case n, ok := <-notices:
					if !ok {
						return
					}
					if err := writeJSON(wsEnvelope{Type: "notice", Data: n}); err != nil {
						return
					}
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		subs := make(map[string]*nats.Subscription) // subject -> subscription

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				reply("error", map[string]string{"error": "invalid JSON"})
				continue
			}

			var subject, kind string
			switch m.Channel {
			case "checkins":
				kind = "checkin"
				if m.Restroom != "" {
					subject = natsadapter.CheckInSubject(m.Restroom)
				} else {
					subject = natsadapter.SubjectCheckInPrefix + ">"
				}
			case "restrooms":
				kind = "restroom"
				subject = natsadapter.SubjectRestroomAdded
			default:
				reply("error", map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if deps.NATS == nil {
					reply("error", map[string]string{"error": "event bus not configured"})
					continue
				}
				if _, exists := subs[subject]; exists {
					reply("status", map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				frameType := kind
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(wsEnvelope{Type: frameType, Data: json.RawMessage(msg.Data)})
				})
				if err != nil {
					reply("error", map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				reply("status", map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					reply("status", map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					reply("error", map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				reply("error", map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
