package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/restaurant-ops-backend/internal/app/service"
	apperrors "github.com/ikkim/restaurant-ops-backend/internal/errors"
	"github.com/ikkim/restaurant-ops-backend/internal/middleware"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/storeapi"
)

const maxIdempotencyKeyLength = 64

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

// RegisterStoreRequest 위저드가 보내는 매장 등록 본문
type RegisterStoreRequest struct {
	BasicInfo   wizard.BasicInfo   `json:"basicInfo"`
	LineSetup   wizard.LineSetup   `json:"lineSetup"`
	GoogleSetup wizard.GoogleSetup `json:"googleSetup"`
	AISetup     wizard.AISetup     `json:"aiSetup"`
}

// registrationResponse 게이트웨이 계약의 응답 형식
type registrationResponse struct {
	Success bool              `json:"success"`
	StoreID string            `json:"storeId,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func registrationFailed(c *gin.Context, status int, code, message string) {
	c.JSON(status, registrationResponse{Success: false, Error: message, Code: code})
}

// RegisterStore POST /api/v1/stores
func (ctrl *StoreController) RegisterStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		registrationFailed(c, http.StatusUnauthorized, apperrors.AuthUnauthorized, "Authentication required")
		return
	}

	key := strings.TrimSpace(c.GetHeader(storeapi.IdempotencyHeader))
	if key == "" || len(key) > maxIdempotencyKeyLength {
		log.Warn("Store registration without usable idempotency key", map[string]interface{}{
			"user_id": userID,
		})
		registrationFailed(c, http.StatusBadRequest, apperrors.StoreIdempotencyMissing,
			"Idempotency-Key header is required (up to 64 characters)")
		return
	}

	var req RegisterStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store registration body", map[string]interface{}{
			"error": err.Error(),
		})
		registrationFailed(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	store, err := ctrl.storeService.RegisterStore(c.Request.Context(), userID, wizard.SubmissionRequest{
		IdempotencyKey: key,
		BasicInfo:      req.BasicInfo,
		LineSetup:      req.LineSetup,
		GoogleSetup:    req.GoogleSetup,
		AISetup:        req.AISetup,
	})
	if err != nil {
		var verr *service.RegistrationValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, registrationResponse{
				Success: false,
				Error:   verr.Error(),
				Code:    apperrors.ValidationRequired,
				Fields:  verr.Fields,
			})
		case errors.Is(err, service.ErrDuplicateStoreName):
			registrationFailed(c, http.StatusConflict, apperrors.StoreDuplicateName, err.Error())
		case errors.Is(err, service.ErrRegistrationInProgress):
			registrationFailed(c, http.StatusConflict, apperrors.StoreRequestInProgress, err.Error())
		default:
			info := apperrors.ParseError(err, "store")
			log.Error("Store registration failed", err, map[string]interface{}{
				"user_id": userID,
				"code":    info.Code,
			})
			registrationFailed(c, http.StatusInternalServerError, apperrors.StoreRegistrationFailed, wizard.GenericSubmissionError)
		}
		return
	}

	log.Info("Store registered", map[string]interface{}{
		"store_id": store.PublicID,
		"user_id":  userID,
	})
	c.JSON(http.StatusCreated, registrationResponse{Success: true, StoreID: store.PublicID})
}

// ListStores GET /api/v1/stores
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	stores, err := ctrl.storeService.ListStores(userID)
	if err != nil {
		log.Error("Failed to list stores", err)
		apperrors.InternalError(c, "Failed to fetch stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// GetStore GET /api/v1/stores/:storeId
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID := c.Param("storeId")
	store, err := ctrl.storeService.GetStore(userID, storeID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to fetch store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.InternalError(c, "Failed to fetch store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": store,
	})
}
