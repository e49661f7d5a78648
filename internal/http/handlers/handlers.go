package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/service"
)

const (
	apiName    = "Aselo Helpline Backend API"
	apiVersion = "1.0.0"
)

type Handler struct {
	Store          db.Store
	Chat           *service.ChatService
	Forms          *service.FormService
	Validator      *validator.Validate
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// @Summary Service information
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": apiName,
		"version": apiVersion,
		"docs":    "/swagger/index.html",
	})
}

// @Summary Health check
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": apiVersion})
}

// @Summary Send a chat message
// @Description Stores the caller's message and returns the counselor assistant's reply
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "chat message"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/chat [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var req models.ChatRequest
	if !h.bind(c, &req) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	reply, err := h.Chat.ProcessMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Response: reply})
}

// @Summary Extract a case record
// @Description Builds the case-intake record from the conversation. Never fails on model errors; the X-Extraction-Outcome header tells extracted from fallback.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "session"
// @Success 200 {object} models.CaseRecord
// @Failure 404 {object} map[string]any
// @Router /api/autofill [post]
func (h *Handler) Autofill(c *gin.Context) {
	var req models.SessionRequest
	if !h.bind(c, &req) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := h.Chat.Autofill(ctx, req.SessionID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("X-Extraction-Outcome", res.Outcome.String())
	if res.Reason != "" {
		c.Header("X-Extraction-Reason", res.Reason)
	}
	c.JSON(http.StatusOK, res.Record)
}

// @Summary Summarise a conversation
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "session"
// @Success 200 {object} models.SummaryResponse
// @Failure 404 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/summarize [post]
func (h *Handler) Summarize(c *gin.Context) {
	var req models.SessionRequest
	if !h.bind(c, &req) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	summary, err := h.Chat.Summarize(ctx, req.SessionID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SummaryResponse{Summary: summary})
}

// @Summary Post-call metadata
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "session"
// @Success 200 {object} models.CallMetadata
// @Failure 404 {object} map[string]any
// @Router /api/metadata [post]
func (h *Handler) Metadata(c *gin.Context) {
	var req models.SessionRequest
	if !h.bind(c, &req) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	meta, err := h.Chat.AnalyzeMetadata(ctx, req.SessionID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// @Summary Conversation history
// @Tags chat
// @Produce json
// @Param session_id path string true "session id"
// @Description An unknown session has an empty history.
// @Success 200 {object} models.Conversation
// @Router /api/conversation/{session_id} [get]
func (h *Handler) Conversation(c *gin.Context) {
	sessionID := c.Param("session_id")
	conv, err := h.Chat.History(c.Request.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusOK, models.Conversation{SessionID: sessionID, Messages: []models.Message{}})
		return
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// @Summary Delete a conversation
// @Tags chat
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/conversation/{session_id} [delete]
func (h *Handler) DeleteConversation(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.Chat.DeleteSession(c.Request.Context(), sessionID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": sessionID})
}

// @Summary List conversations
// @Tags chat
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/conversations [get]
func (h *Handler) Conversations(c *gin.Context) {
	ids, err := h.Chat.ListSessions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids, "count": len(ids)})
}

// @Summary Submit a case form
// @Tags forms
// @Accept json
// @Produce json
// @Param request body models.FormSubmissionRequest true "form"
// @Success 200 {object} models.FormSubmissionResponse
// @Failure 400 {object} map[string]any
// @Router /api/submitForm [post]
func (h *Handler) SubmitForm(c *gin.Context) {
	var req models.FormSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	sub, err := h.Forms.Submit(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.FormSubmissionResponse{
		Success:      true,
		Message:      "Form submitted successfully",
		SubmissionID: sub.SubmissionID,
	})
}

// @Summary Get a form submission
// @Tags forms
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} models.FormSubmission
// @Failure 404 {object} map[string]any
// @Router /api/submission/{session_id} [get]
func (h *Handler) Submission(c *gin.Context) {
	sub, err := h.Forms.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// @Summary Update a submission status
// @Tags forms
// @Produce json
// @Param session_id path string true "session id"
// @Param status query string true "submitted, in_review or closed"
// @Success 200 {object} models.UpdateStatusResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/submission/{session_id}/status [put]
func (h *Handler) UpdateSubmissionStatus(c *gin.Context) {
	sessionID := c.Param("session_id")
	status := c.Query("status")
	if err := h.Forms.UpdateStatus(c.Request.Context(), sessionID, status); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UpdateStatusResponse{
		Success:   true,
		Message:   "Status updated",
		SessionID: sessionID,
		Status:    strings.TrimSpace(status),
	})
}

// @Summary List form submissions
// @Tags forms
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/submissions [get]
func (h *Handler) Submissions(c *gin.Context) {
	subs, err := h.Forms.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs, "count": len(subs)})
}

// bind decodes and validates the JSON body, writing the error response
// itself on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := service.Validate(h.Validator, req); err != nil {
		h.handleError(c, err)
		return false
	}
	return true
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		verr  *service.ValidationError
		aiErr *ai.Error
	)
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Fields)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Conversation not found", nil)
	case errors.Is(err, service.ErrSubmissionNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Form submission not found", nil)
	case errors.As(err, &aiErr):
		status := modelErrorStatus(aiErr.Code)
		if aiErr.RetryAfter > 0 {
			c.Header("Retry-After", retryAfterSeconds(aiErr.RetryAfter))
		}
		h.Logger.Warn().Err(err).Str("code", aiErr.Code).Msg("model request failed")
		writeError(c, status, aiErr.Code, "Language model request failed", aiErr.Message)
	default:
		h.Logger.Error().Err(err).Msg("store request failed")
		writeError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Database operation failed", err.Error())
	}
}

// retryAfterSeconds rounds up so a sub-second delay is never sent as 0.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

func modelErrorStatus(code string) int {
	switch code {
	case ai.CodeConfig:
		return http.StatusServiceUnavailable
	case ai.CodeTimeout:
		return http.StatusGatewayTimeout
	case ai.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
