package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

// sinkTimeout bounds a single digest delivery to the sink.
const sinkTimeout = 15 * time.Second

// DigestSource yields payment digest messages until the context is
// cancelled. *amqp.Client satisfies it.
type DigestSource interface {
	ConsumePaymentDigests(ctx context.Context, handler func(*amqp.PaymentDigestMessage) error) error
}

// DigestSink receives handled digests. *export.SheetsExporter satisfies it.
type DigestSink interface {
	ExportPaymentDigest(ctx context.Context, msg *amqp.PaymentDigestMessage) error
}

// DigestWorker handles payment digest messages from the broker: every digest
// is logged, and forwarded to the sink when one is configured.
type DigestWorker struct {
	sink DigestSink
}

func NewDigestWorker(sink DigestSink) *DigestWorker {
	return &DigestWorker{sink: sink}
}

// Run consumes digests from the source until ctx is cancelled. A handler
// error requeues the message at the broker, so sink failures are retried.
func (w *DigestWorker) Run(ctx context.Context, source DigestSource) error {
	return source.ConsumePaymentDigests(ctx, func(msg *amqp.PaymentDigestMessage) error {
		return w.HandleDigestMessage(ctx, msg)
	})
}

// HandleDigestMessage processes a single payment digest message
func (w *DigestWorker) HandleDigestMessage(ctx context.Context, msg *amqp.PaymentDigestMessage) error {
	slog.InfoContext(ctx, "Payment digest received",
		"upcoming_count", msg.UpcomingCount,
		"window_start", msg.WindowStart,
		"window_end", msg.WindowEnd,
		"month_expense", core.Money{Cents: msg.MonthExpense}.String(),
		"percent_change", msg.PercentChange,
		"trend", msg.Trend,
		"sent_at", msg.Timestamp)

	if w.sink == nil {
		return nil
	}

	sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	if err := w.sink.ExportPaymentDigest(sinkCtx, msg); err != nil {
		return fmt.Errorf("deliver digest to sink: %w", err)
	}
	return nil
}
