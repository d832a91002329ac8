package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

var ErrWizardNotFound = errors.New("Wizard session not found")

const (
	WizardEventState  = "state"
	WizardEventClosed = "closed"
)

// WizardEvent 세션 구독자에게 보내는 상태 스냅샷
type WizardEvent struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	State     *wizard.State `json:"state,omitempty"`
	View      *wizard.View  `json:"view,omitempty"`
}

// EventPublisher websocket hub가 구현한다
type EventPublisher interface {
	Publish(sessionID string, event interface{}) error
	CloseSession(sessionID string)
}

// GatewayFactory 가맹점별 제출 게이트웨이를 만든다
type GatewayFactory func(ownerID uint) wizard.Gateway

// WizardSession 가맹점 한 명이 진행 중인 위저드
type WizardSession struct {
	ID         string
	OwnerID    uint
	Controller *wizard.Controller
	CreatedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *WizardSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *WizardSession) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type WizardService interface {
	Open(ownerID uint) *WizardSession
	Get(ownerID uint, sessionID string) (*WizardSession, error)
	Close(ownerID uint, sessionID string) error
	SweepExpired(now time.Time) int
	PublishSnapshot(sessionID string)
	Count() int
}

type WizardServiceOptions struct {
	Gateways       GatewayFactory
	Publisher      EventPublisher
	SessionTTL     time.Duration
	SubmitTimeout  time.Duration
	WebhookBaseURL string
}

type wizardService struct {
	opts     WizardServiceOptions
	mu       sync.RWMutex
	sessions map[string]*WizardSession
	now      func() time.Time
}

func NewWizardService(opts WizardServiceOptions) WizardService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	return &wizardService{
		opts:     opts,
		sessions: make(map[string]*WizardSession),
		now:      time.Now,
	}
}

// Open 새 위저드 세션을 만든다. 세션마다 고유한 idempotency key를 가진다.
func (s *wizardService) Open(ownerID uint) *WizardSession {
	id := uuid.New().String()
	now := s.now()

	var gateway wizard.Gateway
	if s.opts.Gateways != nil {
		gateway = s.opts.Gateways(ownerID)
	}

	session := &WizardSession{ID: id, OwnerID: ownerID, CreatedAt: now, lastSeen: now}
	session.Controller = wizard.NewController(wizard.Options{
		SessionID:      id,
		Gateway:        gateway,
		SubmitTimeout:  s.opts.SubmitTimeout,
		WebhookBaseURL: s.opts.WebhookBaseURL,
		OnChange: func(state wizard.State) {
			s.publishState(session, state)
		},
	})

	s.mu.Lock()
	s.sessions[id] = session
	total := len(s.sessions)
	s.mu.Unlock()

	logger.Info("Wizard session opened", map[string]interface{}{
		"session_id":      id,
		"owner_id":        ownerID,
		"idempotency_key": session.Controller.IdempotencyKey(),
		"open_sessions":   total,
	})
	return session
}

// Get 다른 가맹점의 세션은 없는 것으로 취급한다
func (s *wizardService) Get(ownerID uint, sessionID string) (*WizardSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || session.OwnerID != ownerID || session.Controller.Closed() {
		return nil, ErrWizardNotFound
	}
	session.touch(s.now())
	return session, nil
}

func (s *wizardService) Close(ownerID uint, sessionID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.OwnerID != ownerID {
		s.mu.Unlock()
		return ErrWizardNotFound
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.closeSession(session, "closed")
	return nil
}

// SweepExpired TTL 동안 사용되지 않은 세션을 닫는다. 제출 중인 세션은 건너뛴다.
func (s *wizardService) SweepExpired(now time.Time) int {
	var expired []*WizardSession

	s.mu.Lock()
	for id, session := range s.sessions {
		if now.Sub(session.LastSeen()) < s.opts.SessionTTL {
			continue
		}
		if session.Controller.State().Submission.Status == wizard.SubmissionSubmitting {
			continue
		}
		delete(s.sessions, id)
		expired = append(expired, session)
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.closeSession(session, "expired")
	}
	return len(expired)
}

func (s *wizardService) closeSession(session *WizardSession, reason string) {
	session.Controller.Close()
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.Publish(session.ID, WizardEvent{Type: WizardEventClosed, SessionID: session.ID}); err != nil {
			logger.Warn("Failed to publish wizard close event", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
		}
		s.opts.Publisher.CloseSession(session.ID)
	}
	logger.Info("Wizard session closed", map[string]interface{}{
		"session_id": session.ID,
		"owner_id":   session.OwnerID,
		"reason":     reason,
	})
}

// PublishSnapshot 구독자가 refresh를 요청했을 때 현재 상태를 다시 보낸다
func (s *wizardService) PublishSnapshot(sessionID string) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.publishState(session, session.Controller.State())
}

func (s *wizardService) publishState(session *WizardSession, state wizard.State) {
	if s.opts.Publisher == nil {
		return
	}
	view := session.Controller.RenderState(state)
	event := WizardEvent{Type: WizardEventState, SessionID: session.ID, State: &state, View: &view}
	if err := s.opts.Publisher.Publish(session.ID, event); err != nil {
		logger.Warn("Failed to publish wizard state", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

func (s *wizardService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
