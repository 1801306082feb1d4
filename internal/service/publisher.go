package service

import (
	"context"

	"timber-market/internal/models"
)

// EventPublisher publishes the marketplace domain events emitted by the
// ledger, the resolver and settlement. *broker.EventPublisher is the
// production implementation; a nil publisher disables eventing. Publish
// failures are best effort everywhere: they are logged, never surfaced as
// operation failures.
type EventPublisher interface {
	PublishInterestDeclared(ctx context.Context, event *models.InterestDeclaredEvent) error
	PublishDealConfirmed(ctx context.Context, event *models.DealConfirmedEvent) error
	PublishDealBilled(ctx context.Context, event *models.DealBilledEvent) error
}
