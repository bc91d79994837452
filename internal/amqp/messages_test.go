package amqp

import (
	"testing"
	"time"
)

func TestPaymentDigestMessageRoundTrip(t *testing.T) {
	msg := NewPaymentDigestMessage(3, "2024-03-15", "2024-03-19", 40000, 33.33, "higher")

	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Errorf("timestamp too old: %v", msg.Timestamp)
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := PaymentDigestMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.UpcomingCount != 3 || got.WindowStart != "2024-03-15" || got.WindowEnd != "2024-03-19" {
		t.Errorf("window fields lost: %+v", got)
	}
	if got.MonthExpense != 40000 || got.PercentChange != 33.33 || got.Trend != "higher" {
		t.Errorf("comparison fields lost: %+v", got)
	}
}

func TestPaymentDigestMessageFromJSONInvalid(t *testing.T) {
	if _, err := PaymentDigestMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
