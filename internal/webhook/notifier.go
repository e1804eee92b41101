package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	alertSeenPrefix = "alert_seen:"
	alertSeenTTL    = 24 * time.Hour
)

// Notifier отправляет в очередь вебхуков новые оповещения высокого риска.
// Повторная отправка одного и того же оповещения отсекается через SETNX.
type Notifier struct {
	redisClient *redis.Client
	publisher   AlertPublisher
	logger      *logrus.Logger
	now         func() time.Time
}

func NewNotifier(redisClient *redis.Client, publisher AlertPublisher, logger *logrus.Logger) *Notifier {
	return &Notifier{
		redisClient: redisClient,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// Notify публикует события для ещё не отправленных оповещений высокого риска
func (n *Notifier) Notify(ctx context.Context, alerts []models.AlertRecord) error {
	log := n.logger.WithFields(logrus.Fields{
		"component": "webhook_notifier",
		"alerts":    len(alerts),
	})

	published := 0
	for _, alert := range alerts {
		if alert.Severity != models.SeverityHigh {
			continue
		}

		key := alertSeenPrefix + alertKey(alert)
		fresh, err := n.redisClient.SetNX(ctx, key, 1, alertSeenTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to mark alert as seen: %w", err)
		}
		if !fresh {
			continue
		}

		if err := n.publisher.Publish(ctx, NewAlertEvent(alert, n.now())); err != nil {
			// снимаем отметку, чтобы оповещение ушло при следующем опросе
			n.redisClient.Del(ctx, key)
			return err
		}
		published++
	}

	if published > 0 {
		log.WithField("published", published).Info("Queued high severity alerts for webhook delivery")
	}
	return nil
}

// alertKey - ключ дедупликации; без id используется хеш содержимого
func alertKey(alert models.AlertRecord) string {
	if id := alert.ID.String(); id != "" {
		return id
	}
	sum := sha256.Sum256([]byte(alert.Type + "|" + alert.Date + "|" + alert.State + "|" + alert.Message))
	return hex.EncodeToString(sum[:8])
}
