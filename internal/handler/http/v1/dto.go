package v1

import (
	"time"

	"github.com/google/uuid"
)

// StatsResponse DTO для агрегатов по инцидентам
// @Description DTO для агрегатов по инцидентам
type StatsResponse struct {
	Total        int `json:"total"`
	Casualties   int `json:"casualties"`
	HighSeverity int `json:"high_severity"`
}

// TypeShareResponse DTO для элемента распределения по типам
// @Description DTO для элемента распределения по типам
type TypeShareResponse struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// CoordinatesResponse DTO для координат инцидента
type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID            string               `json:"id"`
	Date          string               `json:"date"`
	State         string               `json:"state"`
	MineType      string               `json:"mine_type,omitempty"`
	MachineryType string               `json:"machinery_type,omitempty"`
	Severity      string               `json:"severity"`
	Type          string               `json:"type"`
	Description   string               `json:"description"`
	Casualties    int                  `json:"casualties"`
	Coordinates   *CoordinatesResponse `json:"coordinates,omitempty"`
}

// OverviewResponse DTO для главной страницы
// @Description DTO для главной страницы
type OverviewResponse struct {
	Stats        StatsResponse       `json:"stats"`
	Distribution []TypeShareResponse `json:"distribution"`
	Recent       []IncidentResponse  `json:"recent"`
}

// AlertResponse DTO для оповещения
// @Description DTO для оповещения
type AlertResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	SeverityLabel string `json:"severity_label"`
	Message       string `json:"message"`
	Date          string `json:"date"`
	State         string `json:"state"`
}

// AlertGroupResponse DTO для группы оповещений одного типа
// @Description DTO для группы оповещений одного типа
type AlertGroupResponse struct {
	Type   string          `json:"type"`
	Title  string          `json:"title"`
	Count  int             `json:"count"`
	Alerts []AlertResponse `json:"alerts"`
}

// AlertBoardResponse DTO для страницы оповещений
// @Description DTO для страницы оповещений
type AlertBoardResponse struct {
	Total  int                  `json:"total"`
	Groups []AlertGroupResponse `json:"groups"`
}

// UpdateResponse DTO для новости регулятора
type UpdateResponse struct {
	Title     string `json:"title"`
	Link      string `json:"link,omitempty"`
	Published string `json:"published"`
}

// SendMessageRequest DTO для отправки вопроса в чат
// @Description DTO для отправки вопроса в чат
type SendMessageRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

// ArtifactResponse DTO для ссылки на файл
type ArtifactResponse struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	MimeType string    `json:"mime_type"`
	URL      string    `json:"url"`
}

// MessageResponse DTO для сообщения чата
// @Description DTO для сообщения чата
type MessageResponse struct {
	ID        uuid.UUID         `json:"id"`
	Sender    string            `json:"sender"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Artifact  *ArtifactResponse `json:"artifact,omitempty"`
}

// SessionResponse DTO для состояния сессии чата
// @Description DTO для состояния сессии чата
type SessionResponse struct {
	ID       uuid.UUID         `json:"id"`
	State    string            `json:"state"`
	Messages []MessageResponse `json:"messages"`
}

// MessagesResponse DTO для списка сообщений
type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}
