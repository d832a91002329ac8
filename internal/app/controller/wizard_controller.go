package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/restaurant-ops-backend/internal/app/service"
	apperrors "github.com/ikkim/restaurant-ops-backend/internal/errors"
	"github.com/ikkim/restaurant-ops-backend/internal/middleware"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/storeapi"
)

// credential files are a few kilobytes; anything larger is not a key file
const maxCredentialFileSize = 64 * 1024

type WizardController struct {
	wizardService     service.WizardService
	connectionService service.ConnectionService
	summaryService    service.SummaryService
}

func NewWizardController(
	wizardService service.WizardService,
	connectionService service.ConnectionService,
	summaryService service.SummaryService,
) *WizardController {
	return &WizardController{
		wizardService:     wizardService,
		connectionService: connectionService,
		summaryService:    summaryService,
	}
}

type stepInfo struct {
	ID       wizard.StepID     `json:"id"`
	Title    string            `json:"title"`
	Section  wizard.SectionKey `json:"section"`
	Required bool              `json:"required"`
}

type wizardResponse struct {
	SessionID string       `json:"sessionId"`
	State     wizard.State `json:"state"`
	View      wizard.View  `json:"view"`
	Steps     []stepInfo   `json:"steps,omitempty"`
}

type PreviewRequest struct {
	Message string `json:"message"`
}

func stepList(steps []wizard.Descriptor) []stepInfo {
	out := make([]stepInfo, 0, len(steps))
	for _, d := range steps {
		out = append(out, stepInfo{ID: d.ID, Title: d.Title, Section: d.Section, Required: d.Required})
	}
	return out
}

func respondState(c *gin.Context, status int, session *service.WizardSession, state wizard.State) {
	c.JSON(status, wizardResponse{
		SessionID: session.ID,
		State:     state,
		View:      session.Controller.RenderState(state),
	})
}

// respondWizardError maps wizard and session errors onto HTTP responses.
func respondWizardError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrWizardNotFound), errors.Is(err, wizard.ErrClosed):
		apperrors.NotFound(c, apperrors.WizardNotFound, "Wizard session not found")
	case errors.Is(err, wizard.ErrSubmissionInProgress):
		apperrors.Conflict(c, apperrors.WizardSubmissionInProgress, "Store registration is in progress")
	case errors.Is(err, wizard.ErrWizardComplete):
		apperrors.Conflict(c, apperrors.WizardComplete, "The store has already been registered")
	case errors.Is(err, wizard.ErrStaleStepTask):
		apperrors.Conflict(c, apperrors.WizardStaleStep, "This step is no longer active")
	case errors.Is(err, wizard.ErrReadOnlySection):
		apperrors.BadRequest(c, apperrors.WizardReadOnlySection, "This section cannot be edited")
	case errors.Is(err, wizard.ErrUnknownSection):
		apperrors.BadRequest(c, apperrors.WizardUnknownSection, "Unknown section")
	case errors.Is(err, wizard.ErrInvalidPatch):
		apperrors.BadRequest(c, apperrors.WizardInvalidPatch, err.Error())
	case errors.Is(err, wizard.ErrStoreNameRequired):
		apperrors.BadRequest(c, apperrors.WizardStoreNameRequired, "Enter the store name first")
	case errors.Is(err, wizard.ErrUnsupportedFileType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Upload the JSON key file of the service account")
	case errors.Is(err, wizard.ErrMalformedCredential):
		apperrors.BadRequest(c, apperrors.CredentialMalformed, "The file is not valid JSON")
	case errors.Is(err, wizard.ErrMissingCredentialKeys):
		apperrors.BadRequest(c, apperrors.CredentialMissingKeys, "The file must contain client_email and private_key")
	default:
		log.Error("Wizard request failed", err)
		apperrors.InternalError(c, "")
	}
}

// session loads the caller's wizard session or writes the error response.
func (ctrl *WizardController) session(c *gin.Context) (*service.WizardSession, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return nil, false
	}
	session, err := ctrl.wizardService.Get(userID, c.Param("id"))
	if err != nil {
		respondWizardError(c, err)
		return nil, false
	}
	return session, true
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Step index must be a number")
		return 0, false
	}
	return index, true
}

// OpenWizard POST /api/v1/wizards
func (ctrl *WizardController) OpenWizard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	session := ctrl.wizardService.Open(userID)
	log.Info("Wizard opened", map[string]interface{}{
		"session_id": session.ID,
		"owner_id":   userID,
	})

	state := session.Controller.State()
	c.JSON(http.StatusCreated, wizardResponse{
		SessionID: session.ID,
		State:     state,
		View:      session.Controller.RenderState(state),
		Steps:     stepList(session.Controller.Steps()),
	})
}

// GetWizard GET /api/v1/wizards/:id
func (ctrl *WizardController) GetWizard(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	state := session.Controller.State()
	c.JSON(http.StatusOK, wizardResponse{
		SessionID: session.ID,
		State:     state,
		View:      session.Controller.RenderState(state),
		Steps:     stepList(session.Controller.Steps()),
	})
}

// CloseWizard DELETE /api/v1/wizards/:id
func (ctrl *WizardController) CloseWizard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	if err := ctrl.wizardService.Close(userID, c.Param("id")); err != nil {
		respondWizardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSection PATCH /api/v1/wizards/:id/sections/:section
func (ctrl *WizardController) UpdateSection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := ctrl.session(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Could not read request body")
		return
	}

	section := wizard.SectionKey(c.Param("section"))
	patch, err := wizard.DecodePatch(section, raw)
	if err != nil {
		log.Warn("Rejected section patch", map[string]interface{}{
			"session_id": session.ID,
			"section":    section,
			"error":      err.Error(),
		})
		respondWizardError(c, err)
		return
	}

	state, err := session.Controller.UpdateSection(patch)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondState(c, http.StatusOK, session, state)
}

// GoToStep POST /api/v1/wizards/:id/steps/:index
func (ctrl *WizardController) GoToStep(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	state, err := session.Controller.GoToStep(index)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondState(c, http.StatusOK, session, state)
}

// ValidateStep POST /api/v1/wizards/:id/validate/:index
func (ctrl *WizardController) ValidateStep(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	valid, err := session.Controller.ValidateStep(index)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	state := session.Controller.State()
	var fieldErrors wizard.FieldErrors
	if index >= 0 && index < len(session.Controller.Steps()) {
		fieldErrors = state.FieldErrors[session.Controller.Steps()[index].ID]
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":       valid,
		"fieldErrors": fieldErrors,
	})
}

// Advance POST /api/v1/wizards/:id/advance
// On the last data-entry step this submits the store; the call returns once
// the submission has finished.
func (ctrl *WizardController) Advance(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := ctrl.session(c)
	if !ok {
		return
	}

	// a dropped connection must not abort a registration that is already underway
	ctx := context.WithoutCancel(c.Request.Context())
	if token, ok := middleware.GetAccessToken(c); ok {
		ctx = storeapi.WithBearerToken(ctx, token)
	}

	state, err := session.Controller.Advance(ctx)
	if err != nil {
		respondWizardError(c, err)
		return
	}

	if state.Submission.Status == wizard.SubmissionSucceeded {
		log.Info("Wizard completed", map[string]interface{}{
			"session_id": session.ID,
			"store_id":   state.Form.Completion.StoreID,
		})
	}
	respondState(c, http.StatusOK, session, state)
}

// Retreat POST /api/v1/wizards/:id/retreat
func (ctrl *WizardController) Retreat(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	state, moved, err := session.Controller.Retreat()
	if err != nil {
		respondWizardError(c, err)
		return
	}
	if !moved && state.CurrentStep == 0 {
		// 첫 단계에서 뒤로 가면 대시보드가 위저드를 닫는다
		c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "exit": true, "state": state})
		return
	}
	respondState(c, http.StatusOK, session, state)
}

// UploadGoogleCredentials POST /api/v1/wizards/:id/google/credentials
func (ctrl *WizardController) UploadGoogleCredentials(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	task, err := session.Controller.BeginStepTask(wizard.StepGoogle)
	if err != nil {
		respondWizardError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Attach the key file as 'file'")
		return
	}
	if file.Size > maxCredentialFileSize {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "The key file is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded credential file", err)
		apperrors.InternalError(c, "")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCredentialFileSize))
	if err != nil {
		log.Error("Failed to read uploaded credential file", err)
		apperrors.InternalError(c, "")
		return
	}

	state, cred, err := session.Controller.LoadCredentialFile(task, file.Header.Get("Content-Type"), data)
	if err != nil {
		log.Warn("Rejected credential file", map[string]interface{}{
			"session_id": session.ID,
			"filename":   file.Filename,
			"error":      err.Error(),
		})
		respondWizardError(c, err)
		return
	}

	log.Info("Service account credential loaded", map[string]interface{}{
		"session_id":      session.ID,
		"service_account": cred.ClientEmail,
	})
	respondState(c, http.StatusOK, session, state)
}

// TestGoogleConnection POST /api/v1/wizards/:id/google/test
func (ctrl *WizardController) TestGoogleConnection(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	setup := session.Controller.State().Form.GoogleSetup
	c.JSON(http.StatusOK, ctrl.connectionService.TestGoogle(c.Request.Context(), setup))
}

// RegenerateWebhook POST /api/v1/wizards/:id/line/webhook
func (ctrl *WizardController) RegenerateWebhook(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	state, err := session.Controller.RegenerateWebhookURL()
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondState(c, http.StatusOK, session, state)
}

// TestLineConnection POST /api/v1/wizards/:id/line/test
func (ctrl *WizardController) TestLineConnection(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	setup := session.Controller.State().Form.LineSetup
	c.JSON(http.StatusOK, ctrl.connectionService.TestLine(c.Request.Context(), setup))
}

// PreviewReply POST /api/v1/wizards/:id/ai/preview
func (ctrl *WizardController) PreviewReply(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	form := session.Controller.State().Form
	c.JSON(http.StatusOK, gin.H{
		"reply": wizard.PreviewReply(form.AISetup, form.BasicInfo.Name, req.Message),
	})
}

// DownloadSummary GET /api/v1/wizards/:id/summary?format=text|xlsx
func (ctrl *WizardController) DownloadSummary(c *gin.Context) {
	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	format := service.SummaryFormat(c.DefaultQuery("format", string(service.SummaryText)))
	file, err := ctrl.summaryService.Render(session.Controller.State().Form, format)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSummaryFormat) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		respondWizardError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// ArchiveSummary POST /api/v1/wizards/:id/summary/archive?format=text|xlsx
func (ctrl *WizardController) ArchiveSummary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := ctrl.session(c)
	if !ok {
		return
	}
	format := service.SummaryFormat(c.DefaultQuery("format", string(service.SummaryText)))
	archived, err := ctrl.summaryService.Archive(c.Request.Context(), session.Controller.State().Form, format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSummaryFormat):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		case errors.Is(err, service.ErrArchiveUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, err.Error())
		default:
			log.Error("Failed to archive summary", err, map[string]interface{}{
				"session_id": session.ID,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Could not store the summary")
		}
		return
	}
	c.JSON(http.StatusCreated, archived)
}
