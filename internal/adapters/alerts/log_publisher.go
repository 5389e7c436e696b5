// Package alerts delivers ledger alerts to operators.
package alerts

import (
	"context"
	"log/slog"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
)

// LogPublisher writes alerts to the structured log at error level.
type LogPublisher struct{}

var _ portssvc.AlertPublisher = LogPublisher{}

func (LogPublisher) PublishAlert(ctx context.Context, alert domain.LedgerAlert) error {
	middleware.GetLoggerFromCtx(ctx).Error("Ledger alert",
		slog.String("kind", string(alert.Kind)),
		slog.String("transaction_uid", alert.TransactionUID),
		slog.Any("account_uids", alert.AccountUIDs),
		slog.String("cause", alert.Cause),
		slog.Any("compensations", alert.Compensations),
		slog.Time("raised_at", alert.RaisedAt))
	return nil
}

// Fanout publishes to every publisher and returns the first error.
type Fanout []portssvc.AlertPublisher

func (f Fanout) PublishAlert(ctx context.Context, alert domain.LedgerAlert) error {
	var first error
	for _, p := range f {
		if err := p.PublishAlert(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
