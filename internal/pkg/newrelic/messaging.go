package newrelic

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// WithMessageProducerSegment records a NATS publish as a message segment
func WithMessageProducerSegment(ctx context.Context, subject string, fn func() error) error {
	txn := FromContext(ctx)
	if txn == nil {
		return fn()
	}

	segment := &newrelic.MessageProducerSegment{
		StartTime:       txn.StartSegmentNow(),
		Library:         "NATS",
		DestinationType: newrelic.MessageTopic,
		DestinationName: subject,
	}
	defer segment.End()

	return fn()
}

// StartConsumerTransaction opens a background transaction for one consumed
// message and returns a context carrying it. The returned end func must be called.
func StartConsumerTransaction(ctx context.Context, app *newrelic.Application, name, subject string) (context.Context, func(error)) {
	if app == nil {
		return ctx, func(error) {}
	}

	txn := app.StartTransaction(name)
	txn.AddAttribute("message.subject", subject)
	return newrelic.NewContext(ctx, txn), func(err error) {
		NoticeTransactionError(txn, err)
		txn.End()
	}
}
