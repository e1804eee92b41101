package models

// TypeCount - количество инцидентов одного типа
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// DerivedStats - агрегаты по списку инцидентов, пересчитываются при каждом запросе
type DerivedStats struct {
	Total        int         `json:"total"`
	Casualties   int         `json:"casualties"`
	HighSeverity int         `json:"high_severity"`
	TypeCounts   []TypeCount `json:"type_counts"`
}

// TypeShare - элемент гистограммы вместе с долей в процентах
type TypeShare struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// DashboardOverview - данные главной страницы
type DashboardOverview struct {
	Stats        DerivedStats     `json:"stats"`
	Distribution []TypeShare      `json:"distribution"`
	Recent       []IncidentRecord `json:"recent"`
}

// RegulatoryUpdate - новость из ленты регулятора
type RegulatoryUpdate struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}
