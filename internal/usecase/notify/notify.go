// Package notify forwards committed ledger entries to the configured publisher.
package notify

import (
	"context"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
)

// Publish sends entries after their transaction committed. A failure is
// logged and swallowed: the mutation already happened and must not be undone.
func Publish(ctx context.Context, publisher domain.LedgerPublisher, logger *log.Logger, entries ...*domain.Transaction) {
	if publisher == nil || len(entries) == 0 {
		return
	}
	if err := publisher.PublishLedgerEntries(ctx, entries); err != nil && logger != nil {
		logger.WarnContext(ctx, "Failed to publish ledger entries", "count", len(entries), "error", err)
	}
}
