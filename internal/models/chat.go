package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender - автор сообщения в чате
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ArtifactRef - ссылка на скачиваемый файл (PDF-отчёт), привязанный к сообщению
type ArtifactRef struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	MimeType string    `json:"mime_type"`
	URL      string    `json:"url"`
}

// ChatMessage - сообщение журнала чата. После создания не изменяется.
type ChatMessage struct {
	ID        uuid.UUID    `json:"id"`
	Sender    Sender       `json:"sender"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
	Artifact  *ArtifactRef `json:"artifact,omitempty"`
}
