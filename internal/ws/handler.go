package ws

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"

	"github.com/lessismore22/Quickfund/internal/auth"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

type subscribeMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// HandleWebSocket upgrades an authenticated request. Subscriptions are scoped
// to the caller: borrowers can only watch their own notification stream and
// the portfolio channel requires the admin role.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("user_role")

	websocket.Handler(func(conn *websocket.Conn) {
		client := NewClient(conn)
		go h.writer(client)
		h.reader(client, userID, role)
	}).ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client, userID, role string) {
	defer func() {
		h.hub.UnsubscribeAll(client)
		close(client.out)
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(msg.Action)) != "subscribe" {
			continue
		}
		topic := subscriptionTopic(msg, userID, role)
		if topic == "" {
			continue
		}
		h.hub.Subscribe(topic, client)
		ack, _ := json.Marshal(map[string]string{"event": "subscribed", "channel": strings.TrimSpace(msg.Channel)})
		client.send(ack)
	}
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func subscriptionTopic(msg subscribeMessage, userID, role string) string {
	channel := strings.ToLower(strings.TrimSpace(msg.Channel))
	switch channel {
	case "notifications":
		if userID == "" {
			return ""
		}
		return NotificationChannel(userID)
	case "admin:portfolio":
		if role != auth.RoleAdmin {
			return ""
		}
		return PortfolioChannel
	default:
		return ""
	}
}
