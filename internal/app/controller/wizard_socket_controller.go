package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/restaurant-ops-backend/internal/app/service"
	apperrors "github.com/ikkim/restaurant-ops-backend/internal/errors"
	"github.com/ikkim/restaurant-ops-backend/internal/middleware"
	ws "github.com/ikkim/restaurant-ops-backend/internal/websocket"
)

type WizardSocketController struct {
	wizardService service.WizardService
	hub           *ws.Hub
	upgrader      websocket.Upgrader
}

// NewWizardSocketController allowedOrigins가 비어 있으면 Origin 검사를 하지 않는다
func NewWizardSocketController(wizardService service.WizardService, hub *ws.Hub, allowedOrigins []string) *WizardSocketController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WizardSocketController{
		wizardService: wizardService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// Events GET /api/v1/wizards/:id/events
// 연결 직후 현재 상태를 한 번 보내고 이후 변경 때마다 스냅샷을 보낸다.
// 쿼리 파라미터로 토큰을 받지만, 로깅하지 않음 (보안)
func (ctrl *WizardSocketController) Events(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	session, err := ctrl.wizardService.Get(userID, c.Param("id"))
	if err != nil {
		respondWizardError(c, err)
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), session.ID, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	ctrl.wizardService.PublishSnapshot(session.ID)

	log.Info("Wizard event stream connected", map[string]interface{}{
		"session_id": session.ID,
		"owner_id":   userID,
	})
}
