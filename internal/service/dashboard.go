package service

import (
	"context"
	"fmt"

	"github.com/shenikar/mine_safety_dashboard/internal/analytics"
	"github.com/shenikar/mine_safety_dashboard/internal/config"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=dashboard.go -destination=mocks/dashboard_mock.go -package=mocks

// IncidentSource определяет контракт получения данных от внешнего сервиса
type IncidentSource interface {
	FetchIncidents(ctx context.Context) ([]models.IncidentRecord, error)
	FetchAlerts(ctx context.Context) ([]models.AlertRecord, error)
}

// AlertNotifier получает каждый загруженный список оповещений
type AlertNotifier interface {
	Notify(ctx context.Context, alerts []models.AlertRecord) error
}

// UpdatesSource - лента новостей регулятора
type UpdatesSource interface {
	Latest(ctx context.Context) []models.RegulatoryUpdate
}

// DashboardService определяет контракт для данных страниц дашборда
type DashboardService interface {
	Overview(ctx context.Context) (*models.DashboardOverview, error)
	AlertBoard(ctx context.Context) (*models.AlertBoard, error)
	Updates(ctx context.Context) []models.RegulatoryUpdate
}

type dashboardService struct {
	source      IncidentSource
	notifier    AlertNotifier
	updates     UpdatesSource
	logger      *logrus.Logger
	recentLimit int
}

// NewDashboardService создаёт сервис. notifier и updates могут быть nil.
func NewDashboardService(source IncidentSource, notifier AlertNotifier, updates UpdatesSource, logger *logrus.Logger, cfg *config.Config) DashboardService {
	return &dashboardService{
		source:      source,
		notifier:    notifier,
		updates:     updates,
		logger:      logger,
		recentLimit: cfg.RecentIncidentsLimit,
	}
}

// Overview загружает инциденты и пересчитывает агрегаты
func (s *dashboardService) Overview(ctx context.Context) (*models.DashboardOverview, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "dashboard",
		"method":  "Overview",
	})

	incidents, err := s.source.FetchIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch incidents")
		return nil, fmt.Errorf("service: could not load incidents: %w", err)
	}

	stats := analytics.ComputeStats(incidents)
	log.WithFields(logrus.Fields{
		"total":         stats.Total,
		"high_severity": stats.HighSeverity,
	}).Debug("Incident stats computed")

	return &models.DashboardOverview{
		Stats:        stats,
		Distribution: analytics.Distribution(stats),
		Recent:       analytics.Recent(incidents, s.recentLimit),
	}, nil
}

// AlertBoard загружает и группирует оповещения
func (s *dashboardService) AlertBoard(ctx context.Context) (*models.AlertBoard, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "dashboard",
		"method":  "AlertBoard",
	})

	alerts, err := s.source.FetchAlerts(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch alerts")
		return nil, fmt.Errorf("service: could not load alerts: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, alerts); err != nil {
			log.WithError(err).Warn("Failed to notify about alerts")
		}
	}

	board := analytics.NewAlertBoard(alerts)
	log.WithField("groups", len(board.Groups)).Debug("Alerts grouped")
	return board, nil
}

// Updates возвращает последние новости регулятора
func (s *dashboardService) Updates(ctx context.Context) []models.RegulatoryUpdate {
	if s.updates == nil {
		return []models.RegulatoryUpdate{}
	}
	return s.updates.Latest(ctx)
}
