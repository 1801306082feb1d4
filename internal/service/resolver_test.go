package service

import (
	"context"
	"testing"
	"time"

	"timber-market/internal/models"
	"timber-market/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultCounterparty = "comp-admin"

func seedMarket(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.SaveDemands(ctx, []models.DemandItem{
		{
			ID: "dem-1", DiameterMinCm: 20, DiameterMaxCm: 30, LengthM: 4,
			Quantity: 120, CubicMeters: 8.25, SubmittedAt: time.Now(),
			Status: models.DemandStatusReceived, CompanyID: "comp-cust",
		},
	}))
	require.NoError(t, store.SaveStocks(ctx, []models.StockItem{
		{
			ID: "stk-1", DiameterMinCm: 22, DiameterMaxCm: 28, LengthM: 4,
			Quantity: 150, CubicMeters: 10.1, Price: "120 EUR/m³",
			UploadedAt: time.Now(),
			Status:     models.StockStatusAvailable, CompanyID: "comp-manu",
		},
	}))
}

func newTestResolver(store *storage.Store) *MatchResolver {
	ledger := NewInterestLedger(store, nil)
	calc := NewCommissionCalculator(0.05)
	return NewMatchResolver(store, ledger, calc, nil, testDefaultCounterparty)
}

func testSuggestion() models.MatchSuggestion {
	return models.MatchSuggestion{
		ID: "sug-1", DemandID: "dem-1", StockID: "stk-1",
		Reason: "dimensions overlap", Strength: models.StrengthHigh, Score: 0.9,
	}
}

func TestOneSidedInterestDoesNotCreateDeal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterestRecorded, res.Outcome)
	assert.Nil(t, res.Deal)

	assert.Empty(t, store.LoadDeals(ctx))
	assert.Equal(t, models.DemandStatusReceived, store.FindDemandByID(ctx, "dem-1").Status)
	assert.Equal(t, models.StockStatusAvailable, store.FindStockByID(ctx, "stk-1").Status)
}

func TestRepeatedInterestBySamePartyStaysOneSided(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	for i := 0; i < 3; i++ {
		res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInterestRecorded, res.Outcome)
	}

	assert.Len(t, store.LoadInterests(ctx), 1)
	assert.Empty(t, store.LoadDeals(ctx))
}

func TestConvergenceCreatesExactlyOneDeal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterestRecorded, res.Outcome)

	res, err = resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)
	require.Equal(t, OutcomeDealConfirmed, res.Outcome)
	require.NotNil(t, res.Deal)

	deals := store.LoadDeals(ctx)
	require.Len(t, deals, 1)

	deal := deals[0]
	assert.NotEmpty(t, deal.ID)
	assert.Equal(t, "sug-1", deal.SuggestionID)
	assert.Equal(t, "dem-1", deal.DemandID)
	assert.Equal(t, "stk-1", deal.StockID)
	assert.False(t, deal.Billed)
	assert.Equal(t, 0.05, deal.CommissionRate)
	// round2(120 * 8.25 * 0.05)
	assert.Equal(t, 49.5, deal.CommissionAmount)

	assert.Equal(t, models.DemandStatusProcessing, store.FindDemandByID(ctx, "dem-1").Status)
	assert.Equal(t, models.StockStatusReserved, store.FindStockByID(ctx, "stk-1").Status)
	assert.Empty(t, store.LoadInterests(ctx))
}

func TestResolutionIsIdempotentAfterLedgerPurge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)
	require.Equal(t, OutcomeDealConfirmed, res.Outcome)

	// The ledger was purged; a stray replay only records fresh interest.
	res, err = resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterestRecorded, res.Outcome)

	assert.Len(t, store.LoadDeals(ctx), 1)
}

func TestWithdrawBeforeConvergencePreventsDeal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	ledger := NewInterestLedger(store, nil)
	calc := NewCommissionCalculator(0.05)
	resolver := NewMatchResolver(store, ledger, calc, nil, testDefaultCounterparty)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)

	// The customer changes their mind before the manufacturer shows up.
	require.NoError(t, ledger.Withdraw(ctx, "sug-1", "comp-cust"))

	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterestRecorded, res.Outcome)
	assert.Empty(t, store.LoadDeals(ctx))
}

func TestResolutionAbortsWhenItemMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)

	// The stock vanishes between the two declarations.
	require.NoError(t, store.SaveStocks(ctx, []models.StockItem{}))

	_, err = resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.ErrorIs(t, err, ErrItemNotFound)

	assert.Empty(t, store.LoadDeals(ctx))
	assert.Equal(t, models.DemandStatusReceived, store.FindDemandByID(ctx, "dem-1").Status)
	// The ledger keeps both declarations; nothing was purged.
	assert.Len(t, store.LoadInterests(ctx), 2)
}

func TestCounterpartyFallsBackToDefaultForOwnerlessStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)

	// Strip the stock's owner: the counterparty for the customer becomes
	// the configured default party.
	stocks := store.LoadStocks(ctx)
	stocks[0].CompanyID = ""
	require.NoError(t, store.SaveStocks(ctx, stocks))

	resolver := newTestResolver(store)

	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterestRecorded, res.Outcome)

	res, err = resolver.ConsiderInterest(ctx, testSuggestion(), testDefaultCounterparty)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDealConfirmed, res.Outcome)
}

func TestDealSnapshotsSurviveLaterEdits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)
	require.Equal(t, OutcomeDealConfirmed, res.Outcome)

	// Mutate the live records after confirmation.
	demands := store.LoadDemands(ctx)
	demands[0].Quantity = 1
	demands[0].Notes = "edited later"
	require.NoError(t, store.SaveDemands(ctx, demands))
	stocks := store.LoadStocks(ctx)
	stocks[0].Price = "999 EUR/m³"
	require.NoError(t, store.SaveStocks(ctx, stocks))

	// Reload the deal through the store: the snapshot fields round-trip
	// unchanged.
	deals := store.LoadDeals(ctx)
	require.Len(t, deals, 1)
	assert.Equal(t, 120, deals[0].DemandSnapshot.Quantity)
	assert.Empty(t, deals[0].DemandSnapshot.Notes)
	assert.Equal(t, "120 EUR/m³", deals[0].StockSnapshot.Price)
	assert.Equal(t, models.StockStatusAvailable, deals[0].StockSnapshot.Status)
}

func TestSettlementFiltersAndOrdersDeals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)

	// A second, unrelated pairing.
	demands := store.LoadDemands(ctx)
	demands = append(demands, models.DemandItem{
		ID: "dem-2", Quantity: 10, CubicMeters: 1.5,
		Status: models.DemandStatusReceived, CompanyID: "comp-other-cust",
	})
	require.NoError(t, store.SaveDemands(ctx, demands))
	stocks := store.LoadStocks(ctx)
	stocks = append(stocks, models.StockItem{
		ID: "stk-2", Quantity: 20, CubicMeters: 2, Price: "15 EUR/db",
		Status: models.StockStatusAvailable, CompanyID: "comp-manu",
	})
	require.NoError(t, store.SaveStocks(ctx, stocks))

	resolver := newTestResolver(store)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	_, err = resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)

	second := models.MatchSuggestion{ID: "sug-2", DemandID: "dem-2", StockID: "stk-2"}
	_, err = resolver.ConsiderInterest(ctx, second, "comp-other-cust")
	require.NoError(t, err)
	_, err = resolver.ConsiderInterest(ctx, second, "comp-manu")
	require.NoError(t, err)

	settlement := NewSettlementService(store, nil)

	all := settlement.DealsFor(ctx, "")
	require.Len(t, all, 2)
	// Newest first: the second resolution leads.
	assert.Equal(t, "sug-2", all[0].SuggestionID)
	assert.Equal(t, "sug-1", all[1].SuggestionID)

	custDeals := settlement.DealsFor(ctx, "comp-cust")
	require.Len(t, custDeals, 1)
	assert.Equal(t, "sug-1", custDeals[0].SuggestionID)

	manuDeals := settlement.DealsFor(ctx, "comp-manu")
	assert.Len(t, manuDeals, 2)
}

func TestMarkBilledTouchesOnlyBillingFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedMarket(t, store)
	resolver := newTestResolver(store)

	_, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-cust")
	require.NoError(t, err)
	res, err := resolver.ConsiderInterest(ctx, testSuggestion(), "comp-manu")
	require.NoError(t, err)

	settlement := NewSettlementService(store, nil)
	require.NoError(t, settlement.MarkBilled(ctx, res.Deal.ID, "inv-42"))

	deals := store.LoadDeals(ctx)
	require.Len(t, deals, 1)
	assert.True(t, deals[0].Billed)
	assert.Equal(t, "inv-42", deals[0].InvoiceID)
	assert.Equal(t, res.Deal.CommissionAmount, deals[0].CommissionAmount)
	assert.Equal(t, res.Deal.MatchedAt.Unix(), deals[0].MatchedAt.Unix())

	assert.Error(t, settlement.MarkBilled(ctx, "no-such-deal", "inv-43"))
}
