package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

const (
	writeWait = 10 * time.Second

	// 대시보드가 이 시간 안에 pong을 보내지 않으면 구독을 끊는다
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 클라이언트는 refresh 같은 짧은 제어 메시지만 보낸다
	maxMessageSize = 4 * 1024
)

// Conn 위저드 이벤트 구독 연결
type Conn struct {
	*websocket.Conn
}

func NewConn(c *websocket.Conn) *Conn {
	return &Conn{Conn: c}
}

// closeSessionEnded 위저드 세션이 닫혀 Hub가 Send를 닫았을 때 보내는 종료 프레임
func (c *Conn) closeSessionEnded() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "wizard session ended")
	c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// ReadPump refresh 요청을 Hub로 넘기고, 연결이 끊기면 구독을 해제한다
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("Wizard event stream read failed", map[string]interface{}{
					"session_id": c.SessionID,
					"owner_id":   c.OwnerID,
					"error":      err.Error(),
				})
			}
			break
		}

		c.Hub.HandleClientMessage(c, message)
	}
}

// WritePump 상태 스냅샷을 순서대로 내보낸다
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.closeSessionEnded()
				return
			}

			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to push wizard event", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
