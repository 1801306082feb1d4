package worker

import (
	"context"
	"log"

	"timber-market/internal/broker"
	"timber-market/internal/models"
	"timber-market/internal/service"
)

// BillingWorker consumes invoice events from the billing collaborator and
// marks the referenced deals billed.
type BillingWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	settlement   *service.SettlementService
}

// NewBillingWorker creates a new billing worker
func NewBillingWorker(
	consumer *broker.Consumer,
	settlement *service.SettlementService,
) *BillingWorker {
	eventHandler := broker.NewEventHandler()

	worker := &BillingWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		settlement:   settlement,
	}
	eventHandler.OnInvoiceIssued(worker.handleInvoiceIssued)

	return worker
}

func (w *BillingWorker) handleInvoiceIssued(ctx context.Context, event *models.InvoiceIssuedEvent) error {
	log.Printf("Processing invoice for deal: %s", event.DealID)
	return w.settlement.MarkBilled(ctx, event.DealID, event.InvoiceID)
}

// Start starts the worker
func (w *BillingWorker) Start(ctx context.Context) error {
	log.Println("Starting billing worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *BillingWorker) Stop() error {
	log.Println("Stopping billing worker...")
	return w.consumer.Close()
}
