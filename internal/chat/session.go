// Package chat реализует сессию чата с ассистентом: журнал сообщений
// только на добавление и два состояния - ожидание ввода и ожидание ответа.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/backend"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=session.go -destination=mocks/session_mock.go -package=mocks

// Тексты сообщений бота
const (
	GreetingText       = "Hello! I'm your Mine Safety Assistant. Ask safety queries or click Generate Audit Report."
	FallbackText       = "Sorry, I couldn't understand that."
	QueryPDFText       = "Audit report is ready. Click to download."
	QueryErrorText     = "Server error. Please check backend connection."
	ReportPDFText      = "Audit report generated successfully. Click to download."
	ReportErrorText    = "Failed to generate audit report."
	defaultHistorySize = 200

	// MaxQueryLength - предел длины запроса в символах
	MaxQueryLength = 4000
)

var (
	// ErrEmptyInput - запрос пуст после удаления пробелов
	ErrEmptyInput = errors.New("chat: empty input")
	// ErrInputTooLong - запрос длиннее MaxQueryLength
	ErrInputTooLong = errors.New("chat: input too long")
	// ErrBusy - предыдущий запрос ещё не получил ответ
	ErrBusy = errors.New("chat: awaiting response")
	// ErrSessionClosed - сессия уже закрыта
	ErrSessionClosed = errors.New("chat: session closed")
)

// Backend - внешний сервис, отвечающий на запросы
type Backend interface {
	Query(ctx context.Context, query string) (backend.Reply, error)
	GenerateReport(ctx context.Context) (backend.Reply, error)
}

// TranscriptWriter сохраняет добавленные сообщения
type TranscriptWriter interface {
	Record(ctx context.Context, sessionID uuid.UUID, msg models.ChatMessage) error
}

// State - состояние сессии
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	if s == StateAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// Session - одна сессия чата
type Session struct {
	id         uuid.UUID
	backend    Backend
	artifacts  artifact.Store
	transcript TranscriptWriter
	logger     *logrus.Logger
	limit      int
	now        func() time.Time

	mu         sync.Mutex
	state      State
	messages   []models.ChatMessage
	lastActive time.Time
	closed     bool
}

func newSession(id uuid.UUID, m *Manager) *Session {
	limit := m.opts.HistoryLimit
	if limit < 2 {
		limit = defaultHistorySize
	}
	return &Session{
		id:         id,
		backend:    m.backend,
		artifacts:  m.artifacts,
		transcript: m.transcript,
		logger:     m.logger,
		limit:      limit,
		now:        m.now,
		lastActive: m.now(),
	}
}

// ID возвращает идентификатор сессии
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State возвращает текущее состояние
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages возвращает копию журнала
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit отправляет запрос пользователя. Сообщение пользователя добавляется
// сразу и не откатывается; затем добавляется ровно одно сообщение бота.
// Возвращает оба добавленных сообщения.
func (s *Session) Submit(ctx context.Context, input string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	if utf8.RuneCountInString(input) > MaxQueryLength {
		return nil, ErrInputTooLong
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":    "chat",
		"method":     "Submit",
		"session_id": s.id,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state == StateAwaitingResponse {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	userMsg := s.newMessage(models.SenderUser, input)
	evicted := s.appendLocked(userMsg)
	s.state = StateAwaitingResponse
	s.mu.Unlock()

	s.afterAppend(ctx, userMsg, evicted)
	log.Info("Forwarding query to backend")

	reply, err := s.backend.Query(ctx, input)
	botMsg := s.terminalMessage(ctx, log, reply, err, QueryPDFText, QueryErrorText)

	s.mu.Lock()
	evicted = s.appendLocked(botMsg)
	s.state = StateIdle
	s.mu.Unlock()

	s.afterAppend(ctx, botMsg, evicted)
	return []models.ChatMessage{userMsg, botMsg}, nil
}

// GenerateReport запрашивает аудиторский отчёт. Не зависит от состояния
// сессии и может выполняться параллельно с Submit.
func (s *Session) GenerateReport(ctx context.Context) (models.ChatMessage, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "chat",
		"method":     "GenerateReport",
		"session_id": s.id,
	})

	s.mu.Lock()
	closed := s.closed
	s.lastActive = s.now()
	s.mu.Unlock()
	if closed {
		return models.ChatMessage{}, ErrSessionClosed
	}

	log.Info("Requesting audit report")
	reply, err := s.backend.GenerateReport(ctx)
	botMsg := s.terminalMessage(ctx, log, reply, err, ReportPDFText, ReportErrorText)

	s.mu.Lock()
	evicted := s.appendLocked(botMsg)
	s.mu.Unlock()

	s.afterAppend(ctx, botMsg, evicted)
	return botMsg, nil
}

// terminalMessage превращает ответ сервиса в сообщение бота
func (s *Session) terminalMessage(ctx context.Context, log *logrus.Entry, reply backend.Reply, err error, pdfText, errText string) models.ChatMessage {
	if err != nil {
		log.WithError(err).Warn("Backend request failed")
		return s.newMessage(models.SenderBot, errText)
	}

	if reply.Kind != backend.ReplyBinary {
		return s.newMessage(models.SenderBot, reply.MessageText(FallbackText))
	}

	received := s.now()
	blob := artifact.Blob{
		Data:     reply.Body,
		MimeType: reply.MimeType,
		FileName: artifact.ReportFileName(received),
	}
	id, err := s.artifacts.Put(ctx, blob)
	if err != nil {
		log.WithError(err).Error("Failed to store PDF artifact")
		return s.newMessage(models.SenderBot, errText)
	}

	msg := s.newMessage(models.SenderBot, pdfText)
	msg.Artifact = &models.ArtifactRef{
		ID:       id,
		FileName: blob.FileName,
		MimeType: blob.MimeType,
		URL:      artifact.DownloadURL(id),
	}
	log.WithField("artifact_id", id).Info("PDF artifact attached to message")
	return msg
}

func (s *Session) newMessage(sender models.Sender, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		Timestamp: s.now(),
	}
}

// appendLocked добавляет сообщение и вытесняет самые старые сверх лимита.
// Вызывается под s.mu.
func (s *Session) appendLocked(msg models.ChatMessage) []models.ChatMessage {
	s.lastActive = s.now()
	if s.closed {
		// сессия закрыта во время ожидания ответа: сообщение некуда показать
		return []models.ChatMessage{msg}
	}
	s.messages = append(s.messages, msg)
	if len(s.messages) <= s.limit {
		return nil
	}
	n := len(s.messages) - s.limit
	evicted := make([]models.ChatMessage, n)
	copy(evicted, s.messages[:n])
	s.messages = append(s.messages[:0:0], s.messages[n:]...)
	return evicted
}

// afterAppend сохраняет сообщение в журнал и освобождает вытесненные файлы
func (s *Session) afterAppend(ctx context.Context, msg models.ChatMessage, evicted []models.ChatMessage) {
	if s.transcript != nil && !s.isEvicted(msg, evicted) {
		if err := s.transcript.Record(ctx, s.id, msg); err != nil {
			s.logger.WithError(err).WithField("session_id", s.id).Warn("Failed to record chat transcript")
		}
	}
	s.release(ctx, evicted)
}

func (s *Session) isEvicted(msg models.ChatMessage, evicted []models.ChatMessage) bool {
	for _, e := range evicted {
		if e.ID == msg.ID {
			return true
		}
	}
	return false
}

func (s *Session) release(ctx context.Context, msgs []models.ChatMessage) {
	for _, m := range msgs {
		if m.Artifact == nil {
			continue
		}
		if err := s.artifacts.Release(ctx, m.Artifact.ID); err != nil {
			s.logger.WithError(err).WithField("artifact_id", m.Artifact.ID).Warn("Failed to release artifact")
		}
	}
}

// close освобождает все файлы сессии. Повторный вызов ничего не делает.
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	msgs := s.messages
	s.messages = nil
	s.mu.Unlock()

	s.release(ctx, msgs)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaitingResponse
}
