package service

import (
	"context"

	"timber-market/internal/models"
	"timber-market/internal/storage"
)

// RelevanceFilter narrows a suggestion list to what a given viewer should
// see: suggestions touching an item the viewer owns, whose counterpart item
// is still open. The filter holds no state and is recomputed against a fresh
// store snapshot on every call; results must never be cached across
// mutations.
type RelevanceFilter struct {
	store *storage.Store
}

// NewRelevanceFilter creates a filter over the given store
func NewRelevanceFilter(store *storage.Store) *RelevanceFilter {
	return &RelevanceFilter{store: store}
}

// Relevant returns the suggestions relevant to the viewing company, in input
// order. Customers see suggestions for their own demands whose stock is still
// AVAILABLE; manufacturers see suggestions for their own stock whose demand is
// still RECEIVED. Legacy records without an owning company id are treated as
// attributable to any viewer of the matching role.
func (f *RelevanceFilter) Relevant(ctx context.Context, viewer models.Company, suggestions []models.MatchSuggestion) []models.MatchSuggestion {
	demands := make(map[string]models.DemandItem)
	for _, d := range f.store.LoadDemands(ctx) {
		demands[d.ID] = d
	}
	stocks := make(map[string]models.StockItem)
	for _, s := range f.store.LoadStocks(ctx) {
		stocks[s.ID] = s
	}

	relevant := make([]models.MatchSuggestion, 0, len(suggestions))
	for _, sug := range suggestions {
		demand, demandOK := demands[sug.DemandID]
		stock, stockOK := stocks[sug.StockID]

		switch viewer.Role {
		case models.RoleCustomer:
			if !demandOK || !stockOK {
				continue
			}
			if demand.CompanyID != "" && demand.CompanyID != viewer.ID {
				continue
			}
			if stock.Status != models.StockStatusAvailable {
				continue
			}
		case models.RoleManufacturer:
			if !demandOK || !stockOK {
				continue
			}
			if stock.CompanyID != "" && stock.CompanyID != viewer.ID {
				continue
			}
			if demand.Status != models.DemandStatusReceived {
				continue
			}
		default:
			// Admins review the full suggestion list.
		}

		relevant = append(relevant, sug)
	}
	return relevant
}
