package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

const (
	alertQueueKey = "alert_webhook_events"
)

// AlertEvent - структура для данных вебхука
type AlertEvent struct {
	AlertID    string          `json:"alert_id"`
	Type       string          `json:"type"`
	Severity   models.Severity `json:"severity"`
	Message    string          `json:"message"`
	State      string          `json:"state"`
	Date       string          `json:"date"`
	DetectedAt time.Time       `json:"detected_at"`
}

// NewAlertEvent строит событие из оповещения внешнего сервиса
func NewAlertEvent(alert models.AlertRecord, detectedAt time.Time) AlertEvent {
	return AlertEvent{
		AlertID:    alert.ID.String(),
		Type:       alert.Type,
		Severity:   alert.Severity,
		Message:    alert.Message,
		State:      alert.State,
		Date:       alert.Date,
		DetectedAt: detectedAt.UTC(),
	}
}

// AlertPublisher - интерфейс для публикации вебхуков
type AlertPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// RedisAlertPublisher - реализация AlertPublisher, использующая Redis
type RedisAlertPublisher struct {
	redisClient *redis.Client
}

// NewRedisAlertPublisher создает новый RedisAlertPublisher
func NewRedisAlertPublisher(client *redis.Client) *RedisAlertPublisher {
	return &RedisAlertPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisAlertPublisher) Publish(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	// LPUSH + BRPOP в воркере дают очередь FIFO
	if err := p.redisClient.LPush(ctx, alertQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert event to Redis: %w", err)
	}
	return nil
}
