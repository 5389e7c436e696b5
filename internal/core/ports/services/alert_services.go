package services

import (
	"context"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// AlertPublisher forwards ledger alerts to operators.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.LedgerAlert) error
}
