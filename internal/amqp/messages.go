package amqp

import (
	"encoding/json"
	"time"
)

// DataRefreshMessage announces that one financial year's records were
// re-ingested. Consumers drop any cached summaries for that year; the
// message carries no data, readers re-query the store.
type DataRefreshMessage struct {
	FinYear   string    `json:"fin_year"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDataRefreshMessage creates a refresh message for a financial year.
func NewDataRefreshMessage(finYear string, records int) *DataRefreshMessage {
	return &DataRefreshMessage{
		FinYear:   finYear,
		Records:   records,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DataRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DataRefreshMessageFromJSON creates a message from JSON bytes.
func DataRefreshMessageFromJSON(data []byte) (*DataRefreshMessage, error) {
	var msg DataRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
