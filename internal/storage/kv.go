package storage

import "context"

// Collection keys. Each key holds one JSON-encoded array; writers replace the
// whole array, readers take a snapshot at call time. There are no
// transactions and no locks across independent processes, so two writers
// racing on the same key can lose updates. That is the documented contract of
// this store, not an oversight.
const (
	KeyDemands   = "demands"
	KeyStocks    = "stocks"
	KeyCompanies = "companies"
	KeyInterests = "interests"
	KeyDeals     = "deals"
)

// KV is the key-value persistence boundary. A missing key reads as
// (nil, nil); Set replaces the value for the key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
