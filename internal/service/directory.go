package service

import (
	"context"

	"timber-market/internal/models"
	"timber-market/internal/storage"
)

// CompanyDirectory looks up registered parties
type CompanyDirectory struct {
	store *storage.Store
	// fallback is returned when no company of the requested role exists
	fallback models.Company
}

// NewCompanyDirectory creates a directory with a fallback company
func NewCompanyDirectory(store *storage.Store, fallback models.Company) *CompanyDirectory {
	return &CompanyDirectory{store: store, fallback: fallback}
}

// FindByRole returns the first company with the given role, or the fallback
func (d *CompanyDirectory) FindByRole(ctx context.Context, role string) models.Company {
	for _, c := range d.store.LoadCompanies(ctx) {
		if c.Role == role {
			return c
		}
	}
	return d.fallback
}

// FindByID returns the company with the given id, or nil
func (d *CompanyDirectory) FindByID(ctx context.Context, id string) *models.Company {
	for _, c := range d.store.LoadCompanies(ctx) {
		if c.ID == id {
			c := c
			return &c
		}
	}
	return nil
}
