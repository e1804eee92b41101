package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/chat"
	"github.com/shenikar/mine_safety_dashboard/internal/config"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/shenikar/mine_safety_dashboard/internal/service"
	"github.com/sirupsen/logrus"
)

// TranscriptReader читает сохранённый журнал чата
type TranscriptReader interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

// CacheInvalidator сбрасывает кеш списков внешнего сервиса
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Handler struct {
	dashboardService service.DashboardService
	chats            *chat.Manager
	artifacts        artifact.Store
	transcripts      TranscriptReader
	cache            CacheInvalidator
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

// NewHandler создаёт обработчик API. transcripts и cache могут быть nil,
// тогда журнал чата и сброс кеша через API недоступны.
func NewHandler(
	dashboardService service.DashboardService,
	chats *chat.Manager,
	artifacts artifact.Store,
	transcripts TranscriptReader,
	cache CacheInvalidator,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		dashboardService: dashboardService,
		chats:            chats,
		artifacts:        artifacts,
		transcripts:      transcripts,
		cache:            cache,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Get dashboard overview
// @Description Get incident statistics, type distribution and most recent incidents
// @Tags Dashboard
// @Produce json
// @Success 200 {object} OverviewResponse
// @Failure 502 {object} map[string]string "Failed to load incidents"
// @Router /dashboard/overview [get]
func (h *Handler) getOverview(c *gin.Context) {
	log := h.logger.WithField("method", "getOverview")

	overview, err := h.dashboardService.Overview(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get overview from service")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load incidents"})
		return
	}

	c.JSON(http.StatusOK, ModelToOverviewResponse(overview))
}

// @Summary Refresh dashboard data
// @Description Drop cached incident and alert lists so the next request reads the backend
// @Tags Dashboard
// @Success 204 "Cache cleared"
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 501 {object} map[string]string "Cache is disabled"
// @Router /dashboard/refresh [post]
func (h *Handler) refreshDashboard(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "dashboard cache is disabled"})
		return
	}

	if err := h.cache.Invalidate(c.Request.Context()); err != nil {
		h.logger.WithField("method", "refreshDashboard").WithError(err).Error("Failed to invalidate dashboard cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get grouped alerts
// @Description Get active alerts grouped by type in first-occurrence order
// @Tags Alerts
// @Produce json
// @Success 200 {object} AlertBoardResponse
// @Failure 502 {object} map[string]string "Failed to load alerts"
// @Router /alerts/groups [get]
func (h *Handler) getAlertGroups(c *gin.Context) {
	log := h.logger.WithField("method", "getAlertGroups")

	board, err := h.dashboardService.AlertBoard(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get alerts from service")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load alerts"})
		return
	}

	c.JSON(http.StatusOK, ModelToAlertBoardResponse(board))
}

// @Summary Get regulatory updates
// @Description Get the latest items of the regulatory news feed
// @Tags Dashboard
// @Produce json
// @Success 200 {array} UpdateResponse
// @Router /updates [get]
func (h *Handler) getUpdates(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsToUpdateResponses(h.dashboardService.Updates(c.Request.Context())))
}

// @Summary Open a chat session
// @Description Open a new chat session with the greeting message
// @Tags Chat
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /chat/sessions [post]
func (h *Handler) openSession(c *gin.Context) {
	session := h.chats.Open(c.Request.Context())
	h.logger.WithField("method", "openSession").WithField("session_id", session.ID()).Info("Chat session opened")
	c.JSON(http.StatusCreated, SessionToResponse(session))
}

// @Summary Get chat session
// @Description Get the state and message log of a chat session
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid session ID"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /chat/sessions/{id} [get]
func (h *Handler) getSession(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionToResponse(session))
}

// @Summary Close chat session
// @Description Close a chat session and release its artifacts
// @Tags Chat
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid session ID"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /chat/sessions/{id} [delete]
func (h *Handler) closeSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	if err := h.chats.Close(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Send chat message
// @Description Send a query to the backend. The user message and exactly one bot reply are returned.
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param message body SendMessageRequest true "Query"
// @Success 200 {object} MessagesResponse
// @Failure 400 {object} map[string]string "Invalid request body or empty query"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session is awaiting a response"
// @Router /chat/sessions/{id}/messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "sendMessage").WithField("session_id", session.ID())

	var input SendMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := session.Submit(c.Request.Context(), input.Query)
	if err != nil {
		h.writeChatError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, MessagesResponse{Messages: ModelsToMessageResponses(messages)})
}

// @Summary Generate audit report
// @Description Request an audit report PDF. Independent of the chat's awaiting state.
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} map[string]string "Invalid session ID"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /chat/sessions/{id}/report [post]
func (h *Handler) generateReport(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "generateReport").WithField("session_id", session.ID())

	msg, err := session.GenerateReport(c.Request.Context())
	if err != nil {
		h.writeChatError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToMessageResponse(msg))
}

// @Summary Get persisted chat transcript
// @Description Get the persisted message log of a chat session
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} MessagesResponse
// @Failure 400 {object} map[string]string "Invalid session ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 501 {object} map[string]string "Transcripts are disabled"
// @Router /chat/sessions/{id}/transcript [get]
func (h *Handler) getTranscript(c *gin.Context) {
	if h.transcripts == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "chat transcripts are disabled"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	log := h.logger.WithField("method", "getTranscript").WithField("session_id", id)

	messages, err := h.transcripts.ListBySession(c.Request.Context(), id, h.cfg.ChatHistoryLimit)
	if err != nil {
		log.WithError(err).Error("Failed to list chat transcript")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, MessagesResponse{Messages: ModelsToMessageResponses(messages)})
}

// @Summary Download artifact
// @Description Download a generated file (audit report PDF)
// @Tags Artifacts
// @Produce application/pdf
// @Param id path string true "Artifact ID"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Invalid artifact ID"
// @Failure 404 {object} map[string]string "Artifact not found"
// @Router /artifacts/{id} [get]
func (h *Handler) downloadArtifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact ID"})
		return
	}
	log := h.logger.WithField("method", "downloadArtifact").WithField("id", id)

	blob, err := h.artifacts.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, artifact.ErrNotFound) {
			log.WithError(err).Error("Failed to get artifact")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
		return
	}

	c.Header("Content-Disposition", blob.ContentDisposition())
	c.Data(http.StatusOK, blob.MimeType, blob.Data)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"chat_sessions": h.chats.Len(),
	})
}

// lookupSession разбирает идентификатор из пути и ищет сессию;
// при ошибке ответ уже записан
func (h *Handler) lookupSession(c *gin.Context) (*chat.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return nil, false
	}

	session, err := h.chats.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}

func (h *Handler) writeChatError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
	case errors.Is(err, chat.ErrInputTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is too long"})
	case errors.Is(err, chat.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "session is awaiting a response"})
	case errors.Is(err, chat.ErrSessionClosed):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	default:
		log.WithError(err).Error("Chat request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
