package analytics

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

// UncategorizedTitle - заголовок группы оповещений без типа
const UncategorizedTitle = "Uncategorized"

// GroupAlerts группирует оповещения по типу. Порядок групп - по первому
// появлению типа, порядок внутри группы совпадает с исходным.
// Пустые группы не создаются.
func GroupAlerts(alerts []models.AlertRecord) []models.AlertGroup {
	groups := make([]models.AlertGroup, 0)
	index := make(map[string]int)
	for _, alert := range alerts {
		i, ok := index[alert.Type]
		if !ok {
			i = len(groups)
			index[alert.Type] = i
			groups = append(groups, models.AlertGroup{Type: alert.Type})
		}
		groups[i].Alerts = append(groups[i].Alerts, alert)
	}
	return groups
}

// NewAlertBoard собирает данные для страницы оповещений
func NewAlertBoard(alerts []models.AlertRecord) *models.AlertBoard {
	return &models.AlertBoard{
		Total:  len(alerts),
		Groups: GroupAlerts(alerts),
	}
}

// GroupTitle - заголовок секции: "Gas Incidents" для типа "gas"
func GroupTitle(alertType string) string {
	if alertType == "" {
		return UncategorizedTitle
	}
	return Capitalize(alertType) + " Incidents"
}

// Capitalize переводит первую букву в верхний регистр
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SeverityLabel - "HIGH RISK" для "high"
func SeverityLabel(severity models.Severity) string {
	if severity == "" {
		return ""
	}
	return strings.ToUpper(string(severity)) + " RISK"
}
