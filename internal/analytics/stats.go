// Package analytics содержит агрегаты, которые дашборд пересчитывает
// из полученного списка при каждом запросе.
package analytics

import (
	"math"
	"strconv"

	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

// ComputeStats считает агрегаты по инцидентам за один проход.
// Гистограмма типов упорядочена по первому появлению типа,
// записи без типа в неё не попадают.
func ComputeStats(incidents []models.IncidentRecord) models.DerivedStats {
	stats := models.DerivedStats{
		Total:      len(incidents),
		TypeCounts: make([]models.TypeCount, 0),
	}

	index := make(map[string]int)
	for _, inc := range incidents {
		stats.Casualties += inc.CasualtyCount()
		if inc.Severity == models.SeverityHigh {
			stats.HighSeverity++
		}
		if inc.Type == "" {
			continue
		}
		if i, ok := index[inc.Type]; ok {
			stats.TypeCounts[i].Count++
			continue
		}
		index[inc.Type] = len(stats.TypeCounts)
		stats.TypeCounts = append(stats.TypeCounts, models.TypeCount{Type: inc.Type, Count: 1})
	}
	return stats
}

// Percent возвращает 100*count/total, округлённое до одного знака.
// При total <= 0 процент не определён и второй результат равен false.
func Percent(count, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return math.Round(1000*float64(count)/float64(total)) / 10, true
}

// FormatPercent форматирует процент с одним знаком после запятой
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// Distribution превращает гистограмму в доли для графика.
// Пустая статистика даёт пустой срез.
func Distribution(stats models.DerivedStats) []models.TypeShare {
	shares := make([]models.TypeShare, 0, len(stats.TypeCounts))
	for _, tc := range stats.TypeCounts {
		p, ok := Percent(tc.Count, stats.Total)
		if !ok {
			continue
		}
		shares = append(shares, models.TypeShare{
			Type:    tc.Type,
			Count:   tc.Count,
			Percent: p,
			Label:   FormatPercent(p),
		})
	}
	return shares
}

// Recent возвращает не более limit первых инцидентов
func Recent(incidents []models.IncidentRecord, limit int) []models.IncidentRecord {
	if limit < 0 {
		limit = 0
	}
	if len(incidents) < limit {
		limit = len(incidents)
	}
	recent := make([]models.IncidentRecord, limit)
	copy(recent, incidents[:limit])
	return recent
}
