package notify

import (
	"context"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// Notifier publishes ledger events to interested consumers. Publishing is
// best effort: the event describes work that has already committed, so a
// failed publish is logged by the caller and never unwinds the ledger.
type Notifier interface {
	// PublishMonthlyUpdate announces a completed monthly rollover run.
	PublishMonthlyUpdate(ctx context.Context, result *domain.MonthlyUpdateResult, summary string) error

	// Close releases the underlying connection.
	Close() error
}

// NoopNotifier satisfies Notifier when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) PublishMonthlyUpdate(context.Context, *domain.MonthlyUpdateResult, string) error {
	return nil
}

func (NoopNotifier) Close() error { return nil }
