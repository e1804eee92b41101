package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Severity - уровень опасности инцидента или оповещения
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// RecordID - идентификатор записи внешнего сервиса.
// Сервис присылает его то строкой, то числом.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a string or a number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Coordinates - географические координаты места инцидента
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IncidentRecord - запись об инциденте на шахте
type IncidentRecord struct {
	ID            RecordID     `json:"id"`
	Date          string       `json:"date"`
	State         string       `json:"state"`
	MineType      string       `json:"mineType,omitempty"`
	MachineryType string       `json:"machineryType,omitempty"`
	Severity      Severity     `json:"severity"`
	Type          string       `json:"type"`
	Description   string       `json:"description"`
	Casualties    *int         `json:"casualties,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

// CasualtyCount возвращает число пострадавших; отсутствующее или отрицательное значение считается нулём
func (r IncidentRecord) CasualtyCount() int {
	if r.Casualties == nil || *r.Casualties < 0 {
		return 0
	}
	return *r.Casualties
}

// Casualties - вспомогательный конструктор для необязательного поля
func Casualties(n int) *int {
	return &n
}

func (id RecordID) String() string {
	return string(id)
}

