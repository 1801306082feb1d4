package service

import (
	"context"
	"fmt"
	"time"

	"timber-market/internal/models"
	"timber-market/internal/storage"
	"timber-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService reads the confirmed-deal collection for billing and
// reporting, and applies the one mutation deals allow after creation:
// marking them billed with an invoice reference.
type SettlementService struct {
	store     *storage.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewSettlementService creates a settlement service. The publisher may be
// nil; billed events are then skipped.
func NewSettlementService(store *storage.Store, publisher EventPublisher) *SettlementService {
	return &SettlementService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// DealsFor returns the deals involving the given party, newest first. An
// empty party id returns every deal (admin reporting view).
func (s *SettlementService) DealsFor(ctx context.Context, partyID string) []models.Deal {
	ctx, span := util.StartSpan(ctx, "SettlementService.DealsFor")
	defer span.End()

	deals := s.store.LoadDeals(ctx)
	if partyID == "" {
		return deals
	}

	filtered := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if d.InvolvesParty(partyID) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// MarkBilled sets the billed flag and invoice reference on a deal. All other
// deal fields stay untouched.
func (s *SettlementService) MarkBilled(ctx context.Context, dealID, invoiceID string) error {
	ctx, span := util.StartSpan(ctx, "SettlementService.MarkBilled")
	defer span.End()

	deals := s.store.LoadDeals(ctx)
	found := false
	for i := range deals {
		if deals[i].ID == dealID {
			deals[i].Billed = true
			deals[i].InvoiceID = invoiceID
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("deal not found: %s", dealID)
	}

	if err := s.store.SaveDeals(ctx, deals); err != nil {
		return fmt.Errorf("failed to mark deal billed: %w", err)
	}

	util.DealsBilledTotal.Inc()
	s.logger.Info("Deal marked billed",
		zap.String("deal_id", dealID),
		zap.String("invoice_id", invoiceID))

	if s.publisher != nil {
		event := &models.DealBilledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeDealBilled,
				Timestamp: time.Now(),
			},
			DealID:    dealID,
			InvoiceID: invoiceID,
		}
		if err := s.publisher.PublishDealBilled(ctx, event); err != nil {
			s.logger.Error("Failed to publish DealBilled event", zap.Error(err))
		}
	}

	return nil
}
