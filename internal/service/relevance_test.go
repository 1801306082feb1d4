package service

import (
	"context"
	"testing"

	"timber-market/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevanceForCustomer(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	filter := NewRelevanceFilter(store)

	viewer := models.Company{ID: "comp-cust", Role: models.RoleCustomer}
	suggestions := []models.MatchSuggestion{testSuggestion()}

	assert.Len(t, filter.Relevant(ctx, viewer, suggestions), 1)

	// Another customer's demands are not the viewer's business.
	other := models.Company{ID: "comp-other", Role: models.RoleCustomer}
	assert.Empty(t, filter.Relevant(ctx, other, suggestions))

	// Once the stock is reserved, the pairing is no longer actionable.
	require.NoError(t, store.UpdateStockStatus(ctx, "stk-1", models.StockStatusReserved))
	assert.Empty(t, filter.Relevant(ctx, viewer, suggestions))
}

func TestRelevanceForManufacturer(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	filter := NewRelevanceFilter(store)

	viewer := models.Company{ID: "comp-manu", Role: models.RoleManufacturer}
	suggestions := []models.MatchSuggestion{testSuggestion()}

	assert.Len(t, filter.Relevant(ctx, viewer, suggestions), 1)

	// A demand that left RECEIVED is excluded even while a stale suggestion
	// list still references it.
	require.NoError(t, store.UpdateDemandStatus(ctx, "dem-1", models.DemandStatusProcessing))
	assert.Empty(t, filter.Relevant(ctx, viewer, suggestions))
}

func TestRelevanceAttributesOwnerlessRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)

	demands := store.LoadDemands(ctx)
	demands[0].CompanyID = ""
	require.NoError(t, store.SaveDemands(ctx, demands))

	filter := NewRelevanceFilter(store)
	suggestions := []models.MatchSuggestion{testSuggestion()}

	// Legacy ownerless demand shows up for any customer.
	anyCustomer := models.Company{ID: "comp-whoever", Role: models.RoleCustomer}
	assert.Len(t, filter.Relevant(ctx, anyCustomer, suggestions), 1)
}

func TestRelevanceDropsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	require.NoError(t, store.SaveStocks(ctx, []models.StockItem{}))

	filter := NewRelevanceFilter(store)
	viewer := models.Company{ID: "comp-cust", Role: models.RoleCustomer}

	assert.Empty(t, filter.Relevant(ctx, viewer, []models.MatchSuggestion{testSuggestion()}))
}
