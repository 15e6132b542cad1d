package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"costmanager/internal/core"
)

// CostRecordedEvent is the routing key and message type of cost events.
const CostRecordedEvent = "cost.recorded"

// CostRecordedMessage announces a newly stored cost. Consumers use Year and
// Month to refresh the affected period.
type CostRecordedMessage struct {
	MessageID  string        `json:"message_id"`
	CostID     int64         `json:"cost_id"`
	Sum        float64       `json:"sum"`
	Currency   core.Currency `json:"currency"`
	Category   string        `json:"category"`
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	RecordedAt time.Time     `json:"recorded_at"`
}

func NewCostRecordedMessage(rec core.CostRecord) *CostRecordedMessage {
	return &CostRecordedMessage{
		MessageID:  uuid.NewString(),
		CostID:     rec.ID,
		Sum:        rec.Sum,
		Currency:   rec.Currency,
		Category:   rec.Category,
		Year:       rec.Year,
		Month:      rec.Month,
		RecordedAt: rec.Date,
	}
}

func (m *CostRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CostRecordedMessageFromJSON decodes and sanity-checks a message body.
func CostRecordedMessageFromJSON(data []byte) (*CostRecordedMessage, error) {
	var msg CostRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Month < 1 || msg.Month > 12 {
		return nil, fmt.Errorf("invalid month %d", msg.Month)
	}
	if !msg.Currency.IsSupported() {
		return nil, fmt.Errorf("unsupported currency %q", msg.Currency)
	}
	return &msg, nil
}
