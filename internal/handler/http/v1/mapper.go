package v1

import (
	"github.com/shenikar/mine_safety_dashboard/internal/analytics"
	"github.com/shenikar/mine_safety_dashboard/internal/chat"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

// ModelToOverviewResponse преобразует данные главной страницы в DTO
func ModelToOverviewResponse(model *models.DashboardOverview) *OverviewResponse {
	resp := &OverviewResponse{
		Stats: StatsResponse{
			Total:        model.Stats.Total,
			Casualties:   model.Stats.Casualties,
			HighSeverity: model.Stats.HighSeverity,
		},
		Distribution: make([]TypeShareResponse, len(model.Distribution)),
		Recent:       make([]IncidentResponse, len(model.Recent)),
	}
	for i, share := range model.Distribution {
		resp.Distribution[i] = TypeShareResponse(share)
	}
	for i, incident := range model.Recent {
		resp.Recent[i] = ModelToIncidentResponse(incident)
	}
	return resp
}

// ModelToIncidentResponse преобразует запись об инциденте в DTO
func ModelToIncidentResponse(model models.IncidentRecord) IncidentResponse {
	resp := IncidentResponse{
		ID:            model.ID.String(),
		Date:          model.Date,
		State:         model.State,
		MineType:      model.MineType,
		MachineryType: model.MachineryType,
		Severity:      string(model.Severity),
		Type:          model.Type,
		Description:   model.Description,
		Casualties:    model.CasualtyCount(),
	}
	if model.Coordinates != nil {
		resp.Coordinates = &CoordinatesResponse{Lat: model.Coordinates.Lat, Lng: model.Coordinates.Lng}
	}
	return resp
}

// ModelToAlertBoardResponse преобразует сгруппированные оповещения в DTO
func ModelToAlertBoardResponse(model *models.AlertBoard) *AlertBoardResponse {
	resp := &AlertBoardResponse{
		Total:  model.Total,
		Groups: make([]AlertGroupResponse, len(model.Groups)),
	}
	for i, group := range model.Groups {
		alerts := make([]AlertResponse, len(group.Alerts))
		for j, alert := range group.Alerts {
			alerts[j] = AlertResponse{
				ID:            alert.ID.String(),
				Type:          alert.Type,
				Severity:      string(alert.Severity),
				SeverityLabel: analytics.SeverityLabel(alert.Severity),
				Message:       alert.Message,
				Date:          alert.Date,
				State:         alert.State,
			}
		}
		resp.Groups[i] = AlertGroupResponse{
			Type:   group.Type,
			Title:  analytics.GroupTitle(group.Type),
			Count:  len(group.Alerts),
			Alerts: alerts,
		}
	}
	return resp
}

// ModelsToUpdateResponses преобразует новости в DTO
func ModelsToUpdateResponses(updates []models.RegulatoryUpdate) []UpdateResponse {
	responses := make([]UpdateResponse, len(updates))
	for i, update := range updates {
		responses[i] = UpdateResponse(update)
	}
	return responses
}

// ModelToMessageResponse преобразует сообщение чата в DTO
func ModelToMessageResponse(model models.ChatMessage) MessageResponse {
	resp := MessageResponse{
		ID:        model.ID,
		Sender:    string(model.Sender),
		Text:      model.Text,
		Timestamp: model.Timestamp,
	}
	if model.Artifact != nil {
		resp.Artifact = &ArtifactResponse{
			ID:       model.Artifact.ID,
			FileName: model.Artifact.FileName,
			MimeType: model.Artifact.MimeType,
			URL:      model.Artifact.URL,
		}
	}
	return resp
}

// ModelsToMessageResponses преобразует слайс сообщений в DTO
func ModelsToMessageResponses(messages []models.ChatMessage) []MessageResponse {
	responses := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = ModelToMessageResponse(msg)
	}
	return responses
}

// SessionToResponse преобразует сессию чата в DTO
func SessionToResponse(s *chat.Session) *SessionResponse {
	return &SessionResponse{
		ID:       s.ID(),
		State:    s.State().String(),
		Messages: ModelsToMessageResponses(s.Messages()),
	}
}
