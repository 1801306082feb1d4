package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timber-market/internal/models"
	"timber-market/internal/storage"
	"timber-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrItemNotFound signals that a suggestion references a demand or stock item
// that no longer exists in the store. Resolution is aborted without partial
// mutation; the ledger is left as it stands.
var ErrItemNotFound = errors.New("referenced item not found")

// ResolutionOutcome tells the caller what ConsiderInterest did
type ResolutionOutcome string

const (
	// OutcomeInterestRecorded means only this party's interest was stored;
	// the counterparty has not converged yet.
	OutcomeInterestRecorded ResolutionOutcome = "INTEREST_RECORDED"
	// OutcomeDealConfirmed means both parties converged and a deal was created
	OutcomeDealConfirmed ResolutionOutcome = "DEAL_CONFIRMED"
)

// Resolution is the result of one ConsiderInterest call
type Resolution struct {
	Outcome ResolutionOutcome
	Deal    *models.Deal
}

// MatchResolver decides convergence on suggestions and performs the
// suggestion-to-deal transition: snapshot the items into a new deal, cascade
// the status updates, prepend to the settlement store and purge the ledger.
//
// The transition is atomic in intent only. The underlying store has no
// transactions and no isolation between independent processes, so two
// uncoordinated callers resolving the same suggestion at once can both pass
// the convergence check and both create a deal. Within a single process the
// ledger purge makes resolution idempotent; across processes it is
// at-most-once in practice, not a guarantee.
type MatchResolver struct {
	store      *storage.Store
	ledger     *InterestLedger
	calculator *CommissionCalculator
	publisher  EventPublisher
	// defaultCounterpartyID substitutes for a missing owner id on either
	// side of a pairing. Legacy records in the source data carry no owner;
	// the fallback keeps them matchable. Preserved as-is, not extended.
	defaultCounterpartyID string
	logger                *zap.Logger
}

// NewMatchResolver creates a resolver. The publisher may be nil; deal events
// are then skipped.
func NewMatchResolver(
	store *storage.Store,
	ledger *InterestLedger,
	calculator *CommissionCalculator,
	publisher EventPublisher,
	defaultCounterpartyID string,
) *MatchResolver {
	return &MatchResolver{
		store:                 store,
		ledger:                ledger,
		calculator:            calculator,
		publisher:             publisher,
		defaultCounterpartyID: defaultCounterpartyID,
		logger:                util.GetLogger(),
	}
}

// ConsiderInterest records the declaring party's interest in the suggestion
// and, if the counterparty has already declared, resolves the suggestion into
// a confirmed deal. Returns ErrItemNotFound when resolution fires but either
// referenced item is missing.
func (r *MatchResolver) ConsiderInterest(ctx context.Context, suggestion models.MatchSuggestion, partyID string) (*Resolution, error) {
	ctx, span := util.StartSpan(ctx, "MatchResolver.ConsiderInterest")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ResolutionLatency.Observe(time.Since(start).Seconds())
	}()

	counterpartyID := r.counterpartyFor(ctx, suggestion, partyID)

	if err := r.ledger.Declare(ctx, suggestion.ID, partyID); err != nil {
		util.ResolutionFailedTotal.WithLabelValues("ledger_write").Inc()
		return nil, err
	}

	if !r.ledger.Has(ctx, suggestion.ID, counterpartyID) {
		return &Resolution{Outcome: OutcomeInterestRecorded}, nil
	}

	deal, err := r.resolve(ctx, suggestion)
	if err != nil {
		return nil, err
	}

	return &Resolution{Outcome: OutcomeDealConfirmed, Deal: deal}, nil
}

// counterpartyFor determines whose convergence completes the pairing: the
// owner of the side the declaring party does not own. A missing owner id on
// the resolved side falls back to the configured default counterparty.
func (r *MatchResolver) counterpartyFor(ctx context.Context, suggestion models.MatchSuggestion, partyID string) string {
	var demandOwner, stockOwner string
	if demand := r.store.FindDemandByID(ctx, suggestion.DemandID); demand != nil {
		demandOwner = demand.CompanyID
	}
	if stock := r.store.FindStockByID(ctx, suggestion.StockID); stock != nil {
		stockOwner = stock.CompanyID
	}

	counterparty := demandOwner
	if partyID == demandOwner {
		counterparty = stockOwner
	}
	if counterparty == "" {
		counterparty = r.defaultCounterpartyID
	}
	return counterparty
}

// resolve performs the confirmed-match transition for a converged suggestion
func (r *MatchResolver) resolve(ctx context.Context, suggestion models.MatchSuggestion) (*models.Deal, error) {
	demand := r.store.FindDemandByID(ctx, suggestion.DemandID)
	stock := r.store.FindStockByID(ctx, suggestion.StockID)
	if demand == nil || stock == nil {
		util.ResolutionFailedTotal.WithLabelValues("item_not_found").Inc()
		r.logger.Warn("Resolution aborted, referenced item missing",
			zap.String("suggestion_id", suggestion.ID),
			zap.String("demand_id", suggestion.DemandID),
			zap.String("stock_id", suggestion.StockID),
			zap.Bool("demand_found", demand != nil),
			zap.Bool("stock_found", stock != nil))
		return nil, fmt.Errorf("resolving suggestion %s: %w", suggestion.ID, ErrItemNotFound)
	}

	commission := r.calculator.Amount(stock.Price, demand.CubicMeters, demand.Quantity)

	deal := models.Deal{
		ID:               uuid.New().String(),
		SuggestionID:     suggestion.ID,
		DemandID:         demand.ID,
		StockID:          stock.ID,
		DemandSnapshot:   *demand,
		StockSnapshot:    *stock,
		MatchedAt:        time.Now(),
		CommissionRate:   r.calculator.Rate(),
		CommissionAmount: commission,
		Billed:           false,
	}

	if err := r.store.UpdateDemandStatus(ctx, demand.ID, models.DemandStatusProcessing); err != nil {
		util.ResolutionFailedTotal.WithLabelValues("status_update").Inc()
		return nil, fmt.Errorf("failed to update demand status: %w", err)
	}
	if err := r.store.UpdateStockStatus(ctx, stock.ID, models.StockStatusReserved); err != nil {
		util.ResolutionFailedTotal.WithLabelValues("status_update").Inc()
		return nil, fmt.Errorf("failed to update stock status: %w", err)
	}

	// Newest first: readers of the settlement store expect reverse
	// chronological order.
	deals := append([]models.Deal{deal}, r.store.LoadDeals(ctx)...)
	if err := r.store.SaveDeals(ctx, deals); err != nil {
		util.ResolutionFailedTotal.WithLabelValues("settlement_write").Inc()
		return nil, fmt.Errorf("failed to append deal: %w", err)
	}

	if err := r.ledger.Clear(ctx, suggestion.ID); err != nil {
		r.logger.Error("Failed to clear ledger after resolution",
			zap.String("suggestion_id", suggestion.ID),
			zap.Error(err))
	}

	util.DealsConfirmedTotal.Inc()
	r.logger.Info("Deal confirmed",
		zap.String("deal_id", deal.ID),
		zap.String("suggestion_id", suggestion.ID),
		zap.Float64("commission", commission))

	if r.publisher != nil {
		event := &models.DealConfirmedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeDealConfirmed,
				Timestamp: time.Now(),
			},
			DealID:           deal.ID,
			SuggestionID:     suggestion.ID,
			DemandID:         deal.DemandID,
			StockID:          deal.StockID,
			CustomerID:       deal.DemandSnapshot.CompanyID,
			ManufacturerID:   deal.StockSnapshot.CompanyID,
			CommissionAmount: commission,
		}
		if err := r.publisher.PublishDealConfirmed(ctx, event); err != nil {
			r.logger.Error("Failed to publish DealConfirmed event", zap.Error(err))
		}
	}

	return &deal, nil
}
