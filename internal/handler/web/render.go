package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shenikar/mine_safety_dashboard/internal/analytics"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "layout"

// pageData - данные для шаблона layout; заполнен ровно один раздел
type pageData struct {
	Shell          Shell
	Home           *homeView
	Alerts         *alertsView
	Chat           *chatView
	Snapshot       bool
	RefreshSeconds int
	GeneratedAt    string
}

type homeView struct {
	Error    string
	Overview *models.DashboardOverview
	Updates  []models.RegulatoryUpdate
}

type alertsView struct {
	Error string
	Board *models.AlertBoard
}

type chatView struct {
	Messages       []models.ChatMessage
	Busy           bool
	Notice         string
	MaxQueryLength int
}

var templateFuncs = template.FuncMap{
	"capitalize":    analytics.Capitalize,
	"groupTitle":    analytics.GroupTitle,
	"severityLabel": analytics.SeverityLabel,
	"upper": func(s models.Severity) string {
		return strings.ToUpper(string(s))
	},
}

// parseTemplates разбирает встроенные шаблоны страниц
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func renderPage(tmpl *template.Template, w io.Writer, data pageData) error {
	if err := tmpl.ExecuteTemplate(w, layoutTemplate, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
