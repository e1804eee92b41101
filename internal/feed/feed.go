package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	UnknownDate     = "Unknown Date"
	NoUpdatesTitle  = "No updates found"
	FetchErrorTitle = "Error fetching updates"
	dateLayout      = "2006-01-02"
)

// Fetcher читает ленту отраслевых новостей (RSS/Atom)
type Fetcher struct {
	url    string
	limit  int
	parser *gofeed.Parser
	logger *logrus.Logger
}

// NewFetcher создаёт источник новостей с таймаутом на запрос ленты
func NewFetcher(url string, limit int, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{
		url:    url,
		limit:  limit,
		parser: parser,
		logger: logger,
	}
}

// Latest возвращает не более limit последних записей ленты.
// Результат никогда не пуст: при ошибке или пустой ленте
// возвращается одна служебная запись.
func (f *Fetcher) Latest(ctx context.Context) []models.RegulatoryUpdate {
	log := f.logger.WithFields(logrus.Fields{
		"component": "feed",
		"url":       f.url,
	})

	parsed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch regulatory updates")
		return []models.RegulatoryUpdate{{Title: FetchErrorTitle, Published: UnknownDate}}
	}
	if len(parsed.Items) == 0 {
		return []models.RegulatoryUpdate{{Title: NoUpdatesTitle, Published: UnknownDate}}
	}

	n := len(parsed.Items)
	if f.limit > 0 && n > f.limit {
		n = f.limit
	}

	updates := make([]models.RegulatoryUpdate, 0, n)
	for _, item := range parsed.Items[:n] {
		updates = append(updates, models.RegulatoryUpdate{
			Title:     item.Title,
			Link:      item.Link,
			Published: publishedDate(item),
		})
	}
	return updates
}

func publishedDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.Format(dateLayout)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.Format(dateLayout)
	default:
		return UnknownDate
	}
}
