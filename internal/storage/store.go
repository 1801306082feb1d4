package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"timber-market/internal/models"
	"timber-market/internal/util"

	"go.uber.org/zap"
)

// Store exposes typed load/save access to the marketplace collections on top
// of a KV backend. Every load takes a fresh snapshot and every save replaces
// the whole collection; the read path never fails — a missing key, an
// unreachable backend or malformed persisted JSON all degrade to an empty
// collection with a logged warning.
type Store struct {
	kv     KV
	logger *zap.Logger
}

// NewStore creates a store over the given KV backend
func NewStore(kv KV) *Store {
	return &Store{
		kv:     kv,
		logger: util.GetLogger(),
	}
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.kv.Close()
}

// load reads and decodes one collection, degrading to empty on any failure.
// dest must be a pointer to a slice.
func (s *Store) load(ctx context.Context, key string, dest interface{}) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		util.StorageReadFailuresTotal.WithLabelValues(key).Inc()
		s.logger.Warn("Collection read failed, treating as empty",
			zap.String("collection", key),
			zap.Error(err))
		return
	}
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		util.StorageReadFailuresTotal.WithLabelValues(key).Inc()
		s.logger.Warn("Collection contains malformed JSON, treating as empty",
			zap.String("collection", key),
			zap.Error(err))
	}
}

func (s *Store) save(ctx context.Context, key string, list interface{}) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}

// LoadDemands returns a snapshot of the demand collection
func (s *Store) LoadDemands(ctx context.Context) []models.DemandItem {
	demands := []models.DemandItem{}
	s.load(ctx, KeyDemands, &demands)
	return demands
}

// SaveDemands replaces the demand collection
func (s *Store) SaveDemands(ctx context.Context, demands []models.DemandItem) error {
	return s.save(ctx, KeyDemands, demands)
}

// LoadStocks returns a snapshot of the stock collection
func (s *Store) LoadStocks(ctx context.Context) []models.StockItem {
	stocks := []models.StockItem{}
	s.load(ctx, KeyStocks, &stocks)
	return stocks
}

// SaveStocks replaces the stock collection
func (s *Store) SaveStocks(ctx context.Context, stocks []models.StockItem) error {
	return s.save(ctx, KeyStocks, stocks)
}

// LoadCompanies returns a snapshot of the company directory
func (s *Store) LoadCompanies(ctx context.Context) []models.Company {
	companies := []models.Company{}
	s.load(ctx, KeyCompanies, &companies)
	return companies
}

// SaveCompanies replaces the company directory
func (s *Store) SaveCompanies(ctx context.Context, companies []models.Company) error {
	return s.save(ctx, KeyCompanies, companies)
}

// LoadInterests returns a snapshot of the interest ledger
func (s *Store) LoadInterests(ctx context.Context) []models.InterestRecord {
	interests := []models.InterestRecord{}
	s.load(ctx, KeyInterests, &interests)
	return interests
}

// SaveInterests replaces the interest ledger
func (s *Store) SaveInterests(ctx context.Context, interests []models.InterestRecord) error {
	return s.save(ctx, KeyInterests, interests)
}

// LoadDeals returns a snapshot of the settlement store, newest first
func (s *Store) LoadDeals(ctx context.Context) []models.Deal {
	deals := []models.Deal{}
	s.load(ctx, KeyDeals, &deals)
	return deals
}

// SaveDeals replaces the settlement store
func (s *Store) SaveDeals(ctx context.Context, deals []models.Deal) error {
	return s.save(ctx, KeyDeals, deals)
}

// FindDemandByID returns the demand with the given id, or nil
func (s *Store) FindDemandByID(ctx context.Context, id string) *models.DemandItem {
	for _, d := range s.LoadDemands(ctx) {
		if d.ID == id {
			d := d
			return &d
		}
	}
	return nil
}

// FindStockByID returns the stock item with the given id, or nil
func (s *Store) FindStockByID(ctx context.Context, id string) *models.StockItem {
	for _, st := range s.LoadStocks(ctx) {
		if st.ID == id {
			st := st
			return &st
		}
	}
	return nil
}

// UpdateDemandStatus sets the status of one demand via whole-collection
// read-modify-write
func (s *Store) UpdateDemandStatus(ctx context.Context, id, status string) error {
	demands := s.LoadDemands(ctx)
	for i := range demands {
		if demands[i].ID == id {
			demands[i].Status = status
			return s.SaveDemands(ctx, demands)
		}
	}
	return fmt.Errorf("demand not found: %s", id)
}

// UpdateStockStatus sets the status of one stock item via whole-collection
// read-modify-write
func (s *Store) UpdateStockStatus(ctx context.Context, id, status string) error {
	stocks := s.LoadStocks(ctx)
	for i := range stocks {
		if stocks[i].ID == id {
			stocks[i].Status = status
			return s.SaveStocks(ctx, stocks)
		}
	}
	return fmt.Errorf("stock not found: %s", id)
}
