package web

import (
	"context"
	"io"
	"time"

	"github.com/shenikar/mine_safety_dashboard/internal/service"
	"github.com/sirupsen/logrus"
)

// Snapshotter пишет статическую HTML-страницу с дашбордом и оповещениями
type Snapshotter struct {
	renderer *Handler
	refresh  time.Duration
	now      func() time.Time
}

func NewSnapshotter(dashboardService service.DashboardService, logger *logrus.Logger, refresh time.Duration) (*Snapshotter, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Snapshotter{
		renderer: &Handler{dashboardService: dashboardService, logger: logger, tmpl: tmpl},
		refresh:  refresh,
		now:      time.Now,
	}, nil
}

// Render записывает страницу в w. Ошибки загрузки данных отображаются
// на странице так же, как в веб-интерфейсе.
func (s *Snapshotter) Render(ctx context.Context, w io.Writer) error {
	data := pageData{
		Shell:          Shell{Current: PageHome},
		Home:           s.renderer.homeView(ctx),
		Alerts:         s.renderer.alertsView(ctx),
		Snapshot:       s.refresh > 0,
		RefreshSeconds: int(s.refresh.Seconds()),
		GeneratedAt:    s.now().UTC().Format(time.RFC1123),
	}
	return renderPage(s.renderer.tmpl, w, data)
}
