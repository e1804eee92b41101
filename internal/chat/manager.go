package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrSessionNotFound - сессии с таким идентификатором нет
var ErrSessionNotFound = errors.New("chat: session not found")

// Options - параметры сессий
type Options struct {
	// HistoryLimit - максимальное число сообщений в журнале
	HistoryLimit int
	// IdleTimeout - через сколько простоя сессия закрывается
	IdleTimeout time.Duration
}

// Manager хранит открытые сессии
type Manager struct {
	backend    Backend
	artifacts  artifact.Store
	transcript TranscriptWriter
	logger     *logrus.Logger
	opts       Options
	now        func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager создаёт менеджер сессий. transcript может быть nil.
func NewManager(b Backend, artifacts artifact.Store, transcript TranscriptWriter, logger *logrus.Logger, opts Options) *Manager {
	return &Manager{
		backend:    b,
		artifacts:  artifacts,
		transcript: transcript,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
		sessions:   make(map[uuid.UUID]*Session),
	}
}

// Open создаёт новую сессию с приветственным сообщением
func (m *Manager) Open(ctx context.Context) *Session {
	s := newSession(uuid.New(), m)
	greeting := s.newMessage(models.SenderBot, GreetingText)

	s.mu.Lock()
	evicted := s.appendLocked(greeting)
	s.mu.Unlock()
	s.afterAppend(ctx, greeting, evicted)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{"service": "chat", "session_id": s.id}).Info("Chat session opened")
	return s
}

// Get возвращает открытую сессию
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrOpen возвращает существующую сессию или открывает новую.
// Найденная сессия считается активной с этого момента.
func (m *Manager) GetOrOpen(ctx context.Context, id uuid.UUID) *Session {
	if s, err := m.Get(id); err == nil {
		s.touch()
		return s
	}
	return m.Open(ctx)
}

// Close закрывает сессию и освобождает её файлы
func (m *Manager) Close(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.close(ctx)
	m.logger.WithFields(logrus.Fields{"service": "chat", "session_id": id}).Info("Chat session closed")
	return nil
}

// Len - число открытых сессий
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep закрывает сессии, простаивающие дольше IdleTimeout.
// Сессии, ожидающие ответа, не трогает.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	deadline := m.now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.busy() || s.idleSince().After(deadline) {
			continue
		}
		stale = append(stale, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.close(ctx)
	}
	if len(stale) > 0 {
		m.logger.WithField("closed", len(stale)).Info("Idle chat sessions swept")
	}
	return len(stale)
}

// StartJanitor периодически вызывает Sweep до отмены контекста
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	m.logger.Info("Starting chat session janitor...")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("Stopping chat session janitor.")
				return
			case <-ticker.C:
				m.Sweep(ctx)
			}
		}
	}()
}

// Shutdown закрывает все сессии
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close(ctx)
	}
}
