package models

import "time"

// Event types
const (
	EventTypeInterestDeclared = "INTEREST_DECLARED"
	EventTypeDealConfirmed    = "DEAL_CONFIRMED"
	EventTypeInvoiceIssued    = "INVOICE_ISSUED"
	EventTypeDealBilled       = "DEAL_BILLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// InterestDeclaredEvent published when a party signals interest in a suggestion
type InterestDeclaredEvent struct {
	BaseEvent
	SuggestionID string `json:"suggestion_id"`
	PartyID      string `json:"party_id"`
}

// DealConfirmedEvent published when both parties converge and a deal is created
type DealConfirmedEvent struct {
	BaseEvent
	DealID           string  `json:"deal_id"`
	SuggestionID     string  `json:"suggestion_id"`
	DemandID         string  `json:"demand_id"`
	StockID          string  `json:"stock_id"`
	CustomerID       string  `json:"customer_id,omitempty"`
	ManufacturerID   string  `json:"manufacturer_id,omitempty"`
	CommissionAmount float64 `json:"commission_amount"`
}

// InvoiceIssuedEvent published by the billing collaborator once an invoice
// exists for a deal; the billing worker consumes it and marks the deal billed.
type InvoiceIssuedEvent struct {
	BaseEvent
	DealID    string `json:"deal_id"`
	InvoiceID string `json:"invoice_id"`
}

// DealBilledEvent published after a deal's billed flag has been set
type DealBilledEvent struct {
	BaseEvent
	DealID    string `json:"deal_id"`
	InvoiceID string `json:"invoice_id"`
}
