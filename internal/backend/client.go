// Package backend - типизированный клиент внешнего сервиса безопасности шахт
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shenikar/mine_safety_dashboard/internal/config"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// maxBodySize ограничивает размер читаемого ответа
const maxBodySize = 32 << 20

// ErrBodyTooLarge - ответ больше допустимого размера
var ErrBodyTooLarge = errors.New("backend: response body too large")

// StatusError - сервис ответил статусом вне диапазона 2xx
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d", e.Endpoint, e.StatusCode)
}

// Endpoints - адреса внешнего сервиса
type Endpoints struct {
	Incidents string
	Alerts    string
	Query     string
	Report    string
}

// Client выполняет запросы к внешнему сервису. Повторов нет:
// любая ошибка возвращается вызывающему.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *logrus.Logger
	maxBody    int64
}

// NewClient создаёт клиент по конфигурации
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return NewClientWithHTTP(Endpoints{
		Incidents: cfg.IncidentsURL,
		Alerts:    cfg.AlertsURL,
		Query:     cfg.QueryURL,
		Report:    cfg.ReportURL,
	}, &http.Client{Timeout: cfg.BackendTimeout}, logger)
}

// NewClientWithHTTP создаёт клиент с заданным http.Client
func NewClientWithHTTP(endpoints Endpoints, httpClient *http.Client, logger *logrus.Logger) *Client {
	return &Client{
		endpoints:  endpoints,
		httpClient: httpClient,
		logger:     logger,
		maxBody:    maxBodySize,
	}
}

// FetchIncidents получает список инцидентов из поля "incidents".
// Отсутствующее поле означает пустой список.
func (c *Client) FetchIncidents(ctx context.Context) ([]models.IncidentRecord, error) {
	var body struct {
		Incidents []models.IncidentRecord `json:"incidents"`
	}
	if err := c.getJSON(ctx, c.endpoints.Incidents, &body); err != nil {
		return nil, fmt.Errorf("backend: could not fetch incidents: %w", err)
	}
	if body.Incidents == nil {
		return []models.IncidentRecord{}, nil
	}
	return body.Incidents, nil
}

// FetchAlerts получает список оповещений; тело ответа - сам массив
func (c *Client) FetchAlerts(ctx context.Context) ([]models.AlertRecord, error) {
	var alerts []models.AlertRecord
	if err := c.getJSON(ctx, c.endpoints.Alerts, &alerts); err != nil {
		return nil, fmt.Errorf("backend: could not fetch alerts: %w", err)
	}
	if alerts == nil {
		return []models.AlertRecord{}, nil
	}
	return alerts, nil
}

// Query отправляет текст запроса как есть
func (c *Client) Query(ctx context.Context, query string) (Reply, error) {
	payload, err := json.Marshal(struct {
		Query string `json:"query"`
	}{Query: query})
	if err != nil {
		return Reply{}, fmt.Errorf("backend: failed to marshal query: %w", err)
	}
	reply, err := c.post(ctx, c.endpoints.Query, payload)
	if err != nil {
		return Reply{}, fmt.Errorf("backend: query failed: %w", err)
	}
	return reply, nil
}

// GenerateReport запрашивает аудиторский отчёт
func (c *Client) GenerateReport(ctx context.Context) (Reply, error) {
	reply, err := c.post(ctx, c.endpoints.Report, []byte(`{}`))
	if err != nil {
		return Reply{}, fmt.Errorf("backend: report generation failed: %w", err)
	}
	return reply, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	log := c.logger.WithFields(logrus.Fields{"client": "backend", "endpoint": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	_, body, err := c.do(req)
	if err != nil {
		log.WithError(err).Warn("Backend request failed")
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		log.WithError(err).Warn("Failed to decode backend response")
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) (Reply, error) {
	log := c.logger.WithFields(logrus.Fields{"client": "backend", "endpoint": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	header, body, err := c.do(req)
	if err != nil {
		log.WithError(err).Warn("Backend request failed")
		return Reply{}, err
	}

	reply := DecodeReply(header.Get("Content-Type"), body)
	log.WithField("reply_kind", reply.Kind.String()).Debug("Backend reply decoded")
	return reply, nil
}

func (c *Client) do(req *http.Request) (http.Header, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request to %s failed: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
		return nil, nil, &StatusError{Endpoint: req.URL.Redacted(), StatusCode: resp.StatusCode}
	}

	// лишний байт отличает ответ ровно на пределе от обрезанного
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, nil, fmt.Errorf("%s exceeds %d bytes: %w", req.URL.Redacted(), c.maxBody, ErrBodyTooLarge)
	}
	return resp.Header, body, nil
}
