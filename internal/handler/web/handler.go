package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/chat"
	"github.com/shenikar/mine_safety_dashboard/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "chat_session_id"

	IncidentsErrorText = "Failed to load incidents"
	AlertsErrorText    = "Failed to load alerts"
	BusyNoticeText     = "Please wait for the current response."
	TooLongNoticeText  = "Query is too long."

	noticeBusy    = "busy"
	noticeTooLong = "too_long"
)

// Handler отдаёт HTML-интерфейс
type Handler struct {
	dashboardService service.DashboardService
	chats            *chat.Manager
	artifacts        artifact.Store
	logger           *logrus.Logger
	tmpl             *template.Template
	cookieMaxAge     int
}

func NewHandler(dashboardService service.DashboardService, chats *chat.Manager, artifacts artifact.Store, logger *logrus.Logger, opts chat.Options) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		dashboardService: dashboardService,
		chats:            chats,
		artifacts:        artifacts,
		logger:           logger,
		tmpl:             tmpl,
		cookieMaxAge:     int(opts.IdleTimeout.Seconds()),
	}, nil
}

// RegisterRoutes регистрирует маршруты HTML-интерфейса
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.index)
	r.POST("/chat/send", h.sendMessage)
	r.POST("/chat/report", h.generateReport)
	r.GET("/artifacts/:id", h.downloadArtifact)
}

// index отображает навигацию и ровно один раздел
func (h *Handler) index(c *gin.Context) {
	shell := NewShell(ParsePage(c.Query("page")))
	data := pageData{Shell: shell}

	ctx := c.Request.Context()
	switch shell.Current {
	case PageAlerts:
		data.Alerts = h.alertsView(ctx)
	case PageChatbot:
		data.Chat = h.chatView(c)
	default:
		data.Home = h.homeView(ctx)
	}

	c.Render(http.StatusOK, render.HTML{Template: h.tmpl, Name: layoutTemplate, Data: data})
}

func (h *Handler) homeView(ctx context.Context) *homeView {
	view := &homeView{Updates: h.dashboardService.Updates(ctx)}
	overview, err := h.dashboardService.Overview(ctx)
	if err != nil {
		h.logger.WithField("method", "homeView").WithError(err).Warn("Failed to load overview")
		view.Error = IncidentsErrorText
		return view
	}
	view.Overview = overview
	return view
}

func (h *Handler) alertsView(ctx context.Context) *alertsView {
	board, err := h.dashboardService.AlertBoard(ctx)
	if err != nil {
		h.logger.WithField("method", "alertsView").WithError(err).Warn("Failed to load alerts")
		return &alertsView{Error: AlertsErrorText}
	}
	return &alertsView{Board: board}
}

func (h *Handler) chatView(c *gin.Context) *chatView {
	session := h.session(c)
	view := &chatView{
		Messages:       session.Messages(),
		Busy:           session.State() == chat.StateAwaitingResponse,
		MaxQueryLength: chat.MaxQueryLength,
	}
	switch c.Query("notice") {
	case noticeBusy:
		view.Notice = BusyNoticeText
	case noticeTooLong:
		view.Notice = TooLongNoticeText
	}
	return view
}

// sendMessage обрабатывает форму чата и перенаправляет на страницу чата
func (h *Handler) sendMessage(c *gin.Context) {
	session := h.session(c)
	log := h.logger.WithField("method", "sendMessage").WithField("session_id", session.ID())

	target := PageChatbot.Path()
	_, err := session.Submit(c.Request.Context(), c.PostForm("query"))
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyInput):
	case errors.Is(err, chat.ErrBusy):
		target += "&" + url.Values{"notice": {noticeBusy}}.Encode()
	case errors.Is(err, chat.ErrInputTooLong):
		target += "&" + url.Values{"notice": {noticeTooLong}}.Encode()
	default:
		log.WithError(err).Warn("Failed to submit chat message")
	}

	c.Redirect(http.StatusSeeOther, target)
}

// generateReport запрашивает отчёт и перенаправляет на страницу чата
func (h *Handler) generateReport(c *gin.Context) {
	session := h.session(c)
	if _, err := session.GenerateReport(c.Request.Context()); err != nil {
		h.logger.WithField("method", "generateReport").WithError(err).Warn("Failed to generate report")
	}
	c.Redirect(http.StatusSeeOther, PageChatbot.Path())
}

func (h *Handler) downloadArtifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid artifact ID")
		return
	}

	blob, err := h.artifacts.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, artifact.ErrNotFound) {
			h.logger.WithField("method", "downloadArtifact").WithError(err).Error("Failed to get artifact")
		}
		c.String(http.StatusNotFound, "artifact not found")
		return
	}

	c.Header("Content-Disposition", blob.ContentDisposition())
	c.Data(http.StatusOK, blob.MimeType, blob.Data)
}

// session возвращает сессию из cookie или открывает новую.
// Cookie продлевается на каждом запросе, поэтому истекает только после простоя.
func (h *Handler) session(c *gin.Context) *chat.Session {
	id := uuid.Nil
	if raw, err := c.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(raw); err == nil {
			id = parsed
		}
	}

	session := h.chats.GetOrOpen(c.Request.Context(), id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, session.ID().String(), h.cookieMaxAge, "/", "", false, true)
	return session
}
