package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type string `json:"type"` // refresh
}

// Client 위저드 세션 하나를 구독하는 WebSocket 연결
type Client struct {
	Hub           *Hub
	Conn          *Conn
	SessionID     string
	OwnerID       uint
	Send          chan []byte
	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, sessionID string, ownerID uint) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		OwnerID:   ownerID,
		Send:      make(chan []byte, 64),
	}
}

// Hub 세션별 구독자 관리자
type Hub struct {
	// 세션별 구독 클라이언트 (SessionID -> clients, 멀티 탭 지원)
	sessions map[string]map[*Client]bool

	unregister chan *Client
	broadcast  chan *BroadcastMessage
	closeAll   chan string
	done       chan struct{}
	stopOnce   sync.Once

	// refresh 요청 시 현재 스냅샷을 다시 보내기 위한 콜백
	refresh func(sessionID string)

	mu sync.RWMutex
}

// BroadcastMessage 브로드캐스트 메시지
type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		closeAll:   make(chan string, 64),
		done:       make(chan struct{}),
	}
}

// SetRefreshHandler refresh 메시지를 받았을 때 호출할 함수 등록
func (h *Hub) SetRefreshHandler(fn func(sessionID string)) {
	h.mu.Lock()
	h.refresh = fn
	h.mu.Unlock()
}

// Run Hub 실행. Stop이 호출될 때까지 블록된다.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, clients := range h.sessions {
				for client := range clients {
					close(client.Send)
				}
				delete(h.sessions, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case sessionID := <-h.closeAll:
			h.mu.Lock()
			for client := range h.sessions[sessionID] {
				h.removeLocked(client)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.sessions[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"session_id": client.SessionID,
				})
				h.mu.Lock()
				h.removeLocked(client)
				h.mu.Unlock()
			}
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessions, client.SessionID)
	}
	close(client.Send)
	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id":  client.SessionID,
		"subscribers": len(clients),
	})
}

// Stop 모든 연결의 송신 채널을 닫고 Run을 끝낸다.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish 세션 구독자 전체에 이벤트 전송. 버퍼가 가득 차면 버린다.
func (h *Hub) Publish(sessionID string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

// CloseSession 세션 구독을 모두 끊는다
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeAll <- sessionID:
	case <-h.done:
	}
}

// Register 클라이언트 등록. 반환 후 발행되는 이벤트는 모두 전달된다.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		close(client.Send)
		return
	default:
	}
	if _, ok := h.sessions[client.SessionID]; !ok {
		h.sessions[client.SessionID] = make(map[*Client]bool)
	}
	h.sessions[client.SessionID][client] = true
	count := len(h.sessions[client.SessionID])
	h.mu.Unlock()

	logger.Info("WebSocket client registered", map[string]interface{}{
		"session_id":  client.SessionID,
		"owner_id":    client.OwnerID,
		"subscribers": count,
	})
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers 세션을 구독 중인 연결 수
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	if msg.Type == "refresh" {
		h.mu.RLock()
		refresh := h.refresh
		h.mu.RUnlock()
		if refresh != nil {
			refresh(client.SessionID)
		}
	}
}
