package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/shenikar/mine_safety_dashboard/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	incidentsCacheKey = "feed:incidents"
	alertsCacheKey    = "feed:alerts"
)

// CachedSource кеширует в Redis сырые списки, полученные от внешнего сервиса.
// Агрегаты не кешируются: сервис пересчитывает их из списка.
type CachedSource struct {
	next        service.IncidentSource
	redisClient *redis.Client
	ttl         time.Duration
	logger      *logrus.Logger
}

// NewCachedSource оборачивает источник кешем с заданным сроком жизни
func NewCachedSource(next service.IncidentSource, redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	return &CachedSource{
		next:        next,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

// FetchIncidents возвращает инциденты из кеша или из внешнего сервиса
func (r *CachedSource) FetchIncidents(ctx context.Context) ([]models.IncidentRecord, error) {
	var incidents []models.IncidentRecord
	if r.getCache(ctx, incidentsCacheKey, &incidents) {
		return incidents, nil
	}

	incidents, err := r.next.FetchIncidents(ctx)
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, incidentsCacheKey, incidents)
	return incidents, nil
}

// FetchAlerts возвращает оповещения из кеша или из внешнего сервиса
func (r *CachedSource) FetchAlerts(ctx context.Context) ([]models.AlertRecord, error) {
	var alerts []models.AlertRecord
	if r.getCache(ctx, alertsCacheKey, &alerts) {
		return alerts, nil
	}

	alerts, err := r.next.FetchAlerts(ctx)
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, alertsCacheKey, alerts)
	return alerts, nil
}

// Invalidate удаляет оба списка из кеша
func (r *CachedSource) Invalidate(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, incidentsCacheKey, alertsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}

// getCache читает значение из кеша; ошибки Redis считаются промахом
func (r *CachedSource) getCache(ctx context.Context, key string, dst any) bool {
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WithError(err).WithField("key", key).Warn("Failed to read feed cache")
		}
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Failed to unmarshal cached feed")
		return false
	}
	return true
}

func (r *CachedSource) setCache(ctx context.Context, key string, value any) {
	if r.ttl <= 0 {
		return
	}
	val, err := json.Marshal(value)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Failed to marshal feed for cache")
		return
	}
	if err := r.redisClient.Set(ctx, key, val, r.ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Failed to write feed cache")
	}
}
