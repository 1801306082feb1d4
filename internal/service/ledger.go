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

// InterestLedger records which parties have declared interest in which
// suggestions. Pure set membership keyed by (suggestionId, partyId):
// declaring twice replaces the earlier record, last write wins per party.
type InterestLedger struct {
	store     *storage.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewInterestLedger creates a ledger over the given store. The publisher may
// be nil; interest events are then skipped.
func NewInterestLedger(store *storage.Store, publisher EventPublisher) *InterestLedger {
	return &InterestLedger{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Declare idempotently upserts an interest record. Any existing record for
// the same (suggestion, party) pair is removed first, so replays never
// accumulate duplicates.
func (l *InterestLedger) Declare(ctx context.Context, suggestionID, partyID string) error {
	interests := l.store.LoadInterests(ctx)

	kept := make([]models.InterestRecord, 0, len(interests)+1)
	for _, rec := range interests {
		if rec.SuggestionID == suggestionID && rec.PartyID == partyID {
			continue
		}
		kept = append(kept, rec)
	}
	kept = append(kept, models.InterestRecord{
		SuggestionID: suggestionID,
		PartyID:      partyID,
		DeclaredAt:   time.Now(),
	})

	if err := l.store.SaveInterests(ctx, kept); err != nil {
		return fmt.Errorf("failed to record interest: %w", err)
	}

	util.InterestDeclaredTotal.Inc()
	l.logger.Info("Interest declared",
		zap.String("suggestion_id", suggestionID),
		zap.String("party_id", partyID))

	if l.publisher != nil {
		event := &models.InterestDeclaredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeInterestDeclared,
				Timestamp: time.Now(),
			},
			SuggestionID: suggestionID,
			PartyID:      partyID,
		}
		if err := l.publisher.PublishInterestDeclared(ctx, event); err != nil {
			l.logger.Error("Failed to publish InterestDeclared event", zap.Error(err))
		}
	}

	return nil
}

// Has reports whether the given party has a recorded interest in the
// suggestion
func (l *InterestLedger) Has(ctx context.Context, suggestionID, partyID string) bool {
	for _, rec := range l.store.LoadInterests(ctx) {
		if rec.SuggestionID == suggestionID && rec.PartyID == partyID {
			return true
		}
	}
	return false
}

// Withdraw removes one party's interest record, if present. Withdrawal before
// convergence is just a ledger removal; it does not touch anything else.
func (l *InterestLedger) Withdraw(ctx context.Context, suggestionID, partyID string) error {
	interests := l.store.LoadInterests(ctx)

	kept := interests[:0]
	for _, rec := range interests {
		if rec.SuggestionID == suggestionID && rec.PartyID == partyID {
			continue
		}
		kept = append(kept, rec)
	}

	return l.store.SaveInterests(ctx, kept)
}

// Clear removes all interest records for a suggestion. Called once a
// suggestion resolves, so residual records cannot re-trigger resolution.
func (l *InterestLedger) Clear(ctx context.Context, suggestionID string) error {
	interests := l.store.LoadInterests(ctx)

	kept := interests[:0]
	for _, rec := range interests {
		if rec.SuggestionID == suggestionID {
			continue
		}
		kept = append(kept, rec)
	}

	if err := l.store.SaveInterests(ctx, kept); err != nil {
		return fmt.Errorf("failed to clear ledger for suggestion %s: %w", suggestionID, err)
	}
	return nil
}
