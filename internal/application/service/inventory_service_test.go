package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item := f.addItem(t, "  Basmati Rice ", "50", 10)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, "Basmati Rice", item.Name)

	got, err := f.inventory.GetItem(ctx, testUser, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(dec("50")))

	updated, err := f.inventory.UpdateItem(ctx, testUser, item.ID, ItemInput{Name: "Brown Rice", Price: dec("65.5"), Stock: 0})
	require.NoError(t, err)
	assert.Equal(t, "Brown Rice", updated.Name)
	assert.Equal(t, 0, updated.Stock)

	require.NoError(t, f.inventory.DeleteItem(ctx, testUser, item.ID))
	_, err = f.inventory.GetItem(ctx, testUser, item.ID)
	requireAppError(t, err, http.StatusNotFound, "Item not found")
}

func TestInventoryValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.inventory.CreateItem(context.Background(), testUser, ItemInput{Name: "", Price: dec("-1"), Stock: -2})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity, "Validation failed")
	assert.Len(t, appErr.Errors, 3)
}

func TestInventoryMissingItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.inventory.UpdateItem(ctx, testUser, uuid.New(), ItemInput{Name: "Tea", Price: dec("5"), Stock: 1})
	requireAppError(t, err, http.StatusNotFound, "Item not found")

	err = f.inventory.DeleteItem(ctx, testUser, uuid.New())
	requireAppError(t, err, http.StatusNotFound, "Item not found")
}

func TestInventoryIsScopedPerUser(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(t, "Tea", "5", 1)

	_, err := f.inventory.GetItem(context.Background(), "someone-else", item.ID)
	requireAppError(t, err, http.StatusNotFound, "Item not found")
}

func TestListItems(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "tea", "5", 1)
	f.addItem(t, "Basmati Rice", "50", 10)
	f.addItem(t, "Mustard Oil", "120", 0)

	result, err := f.inventory.ListItems(context.Background(), testUser, &repository.InventoryFilterParams{})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "Basmati Rice", result.Items[0].Name)
	assert.Equal(t, "tea", result.Items[2].Name)

	result, err = f.inventory.ListItems(context.Background(), testUser, &repository.InventoryFilterParams{Search: "OIL"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Mustard Oil", result.Items[0].Name)
}
