package service

import (
	"context"
	"testing"

	"timber-market/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryFindByRole(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	require.NoError(t, store.SaveCompanies(ctx, []models.Company{
		{ID: "comp-cust", Name: "Fahid Kft", Role: models.RoleCustomer},
		{ID: "comp-manu", Name: "Erdo Zrt", Role: models.RoleManufacturer},
	}))

	fallback := models.Company{ID: "comp-admin", Role: models.RoleAdmin}
	directory := NewCompanyDirectory(store, fallback)

	assert.Equal(t, "comp-manu", directory.FindByRole(ctx, models.RoleManufacturer).ID)
	assert.Equal(t, "comp-cust", directory.FindByRole(ctx, models.RoleCustomer).ID)

	// No admin registered: the fallback stands in.
	assert.Equal(t, fallback, directory.FindByRole(ctx, models.RoleAdmin))
}

func TestDirectoryFindByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	require.NoError(t, store.SaveCompanies(ctx, []models.Company{
		{ID: "comp-cust", Role: models.RoleCustomer},
	}))

	directory := NewCompanyDirectory(store, models.Company{})

	found := directory.FindByID(ctx, "comp-cust")
	require.NotNil(t, found)
	assert.Equal(t, models.RoleCustomer, found.Role)

	assert.Nil(t, directory.FindByID(ctx, "comp-missing"))
}
