package models

// AlertRecord - оповещение об опасности или нарушении требований безопасности
type AlertRecord struct {
	ID       RecordID `json:"id"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Date     string   `json:"date"`
	State    string   `json:"state"`
}

// AlertGroup - оповещения одного типа в исходном порядке
type AlertGroup struct {
	Type   string        `json:"type"`
	Alerts []AlertRecord `json:"alerts"`
}

// AlertBoard - сгруппированные оповещения для страницы оповещений
type AlertBoard struct {
	Total  int          `json:"total"`
	Groups []AlertGroup `json:"groups"`
}
