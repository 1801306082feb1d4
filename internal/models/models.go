package models

import "time"

// Company represents a registered party on the marketplace
type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Company roles
const (
	RoleCustomer     = "customer"
	RoleManufacturer = "manufacturer"
	RoleAdmin        = "admin"
)

// DemandItem represents a customer's open request for timber
type DemandItem struct {
	ID            string    `json:"id"`
	DiameterMinCm float64   `json:"diameter_min_cm"`
	DiameterMaxCm float64   `json:"diameter_max_cm"`
	LengthM       float64   `json:"length_m"`
	Quantity      int       `json:"quantity"`
	CubicMeters   float64   `json:"cubic_meters"`
	Notes         string    `json:"notes,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Status        string    `json:"status"`
	CompanyID     string    `json:"company_id,omitempty"`
}

// StockItem represents a manufacturer's open offering of timber
type StockItem struct {
	ID             string    `json:"id"`
	DiameterMinCm  float64   `json:"diameter_min_cm"`
	DiameterMaxCm  float64   `json:"diameter_max_cm"`
	LengthM        float64   `json:"length_m"`
	Quantity       int       `json:"quantity"`
	CubicMeters    float64   `json:"cubic_meters"`
	Price          string    `json:"price"`
	Sustainability string    `json:"sustainability,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Status         string    `json:"status"`
	CompanyID      string    `json:"company_id,omitempty"`
}

// Demand statuses
const (
	DemandStatusReceived   = "RECEIVED"
	DemandStatusProcessing = "PROCESSING"
	DemandStatusCompleted  = "COMPLETED"
)

// Stock statuses
const (
	StockStatusAvailable = "AVAILABLE"
	StockStatusReserved  = "RESERVED"
	StockStatusSold      = "SOLD"
)

// MatchSuggestion is an immutable candidate pairing of a demand and a stock
// item, produced by the suggestion source together with a rationale and a
// strength indicator.
type MatchSuggestion struct {
	ID       string  `json:"id"`
	DemandID string  `json:"demand_id"`
	StockID  string  `json:"stock_id"`
	Reason   string  `json:"reason"`
	Strength string  `json:"strength,omitempty"`
	Score    float64 `json:"score"`
}

// Suggestion strength labels
const (
	StrengthHigh   = "HIGH"
	StrengthMedium = "MEDIUM"
	StrengthLow    = "LOW"
)

// InterestRecord marks that one party has confirmed interest in a suggestion.
// Records are ephemeral: they are purged when the suggestion resolves.
type InterestRecord struct {
	SuggestionID string    `json:"suggestion_id"`
	PartyID      string    `json:"party_id"`
	DeclaredAt   time.Time `json:"declared_at"`
}

// Deal is the confirmed match created when both parties converge on a
// suggestion. The demand and stock snapshots are full copies taken at
// confirmation time, so later edits to the live records never alter a
// historical deal. Only Billed and InvoiceID may change after creation.
type Deal struct {
	ID               string     `json:"id"`
	SuggestionID     string     `json:"suggestion_id"`
	DemandID         string     `json:"demand_id"`
	StockID          string     `json:"stock_id"`
	DemandSnapshot   DemandItem `json:"demand_snapshot"`
	StockSnapshot    StockItem  `json:"stock_snapshot"`
	MatchedAt        time.Time  `json:"matched_at"`
	CommissionRate   float64    `json:"commission_rate"`
	CommissionAmount float64    `json:"commission_amount"`
	Billed           bool       `json:"billed"`
	InvoiceID        string     `json:"invoice_id,omitempty"`
}

// InvolvesParty reports whether the deal concerns the given company, on
// either side of the pairing. Snapshots are authoritative: ownership at
// confirmation time decides who sees the deal.
func (d *Deal) InvolvesParty(partyID string) bool {
	return d.DemandSnapshot.CompanyID == partyID || d.StockSnapshot.CompanyID == partyID
}
