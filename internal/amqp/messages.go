package amqp

import (
	"encoding/json"
	"time"
)

// PaymentDigestMessage carries one notifier tick's worth of report data:
// how many recurring expenses are due in the upcoming window and how the
// current month compares to the previous one.
type PaymentDigestMessage struct {
	UpcomingCount int       `json:"upcoming_count"`
	WindowStart   string    `json:"window_start"`
	WindowEnd     string    `json:"window_end"`
	MonthExpense  int64     `json:"month_expense_cents"`
	PercentChange float64   `json:"percent_change"`
	Trend         string    `json:"trend"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewPaymentDigestMessage(count int, windowStart, windowEnd string, monthExpense int64, percentChange float64, trend string) *PaymentDigestMessage {
	return &PaymentDigestMessage{
		UpcomingCount: count,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		MonthExpense:  monthExpense,
		PercentChange: percentChange,
		Trend:         trend,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PaymentDigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentDigestMessageFromJSON creates a message from JSON bytes
func PaymentDigestMessageFromJSON(data []byte) (*PaymentDigestMessage, error) {
	var msg PaymentDigestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
