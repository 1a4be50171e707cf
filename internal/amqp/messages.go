package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportMessage asks the worker to export one daily-report snapshot.
// It carries only identifiers; the worker fetches current totals from the
// database so a regenerated report is never exported with stale numbers.
type ReportExportMessage struct {
	ReportID   int64     `json:"report_id"`
	OwnerID    string    `json:"owner_id"`
	ReportDate string    `json:"report_date"` // YYYY-MM-DD
	Timestamp  time.Time `json:"timestamp"`
}

func NewReportExportMessage(reportID int64, ownerID, reportDate string) *ReportExportMessage {
	return &ReportExportMessage{
		ReportID:   reportID,
		OwnerID:    ownerID,
		ReportDate: reportDate,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportExportMessageFromJSON creates a message from JSON bytes
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
