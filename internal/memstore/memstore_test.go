package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
)

func TestUsersUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@x.io"}))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "a@x.io"}), repositories.ErrDuplicate)

	b := &models.User{Email: "b@x.io"}
	require.NoError(t, users.Create(ctx, b))
	taken := "a@x.io"
	_, err := users.UpdateProfile(ctx, b.ID.Hex(), models.ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestInvalidIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Users().FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = s.Products().Delete(ctx, "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, s.Orders().Delete(ctx, "nope"), repositories.ErrNotFound)
}

func TestCartsAreCopied(t *testing.T) {
	ctx := context.Background()
	carts := New().Carts()

	c := models.NewCart("u1")
	c.Add("p1", 1, 10)
	require.NoError(t, carts.Save(ctx, c))

	c.CartItems[0].Quantity = 99

	got, err := carts.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CartItems[0].Quantity)
	assert.Equal(t, c.ID, got.ID)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := models.NewCart("u1")
	c.Add("p1", 1, 10)
	require.NoError(t, s.Carts().Save(ctx, c))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Orders().Create(ctx, &models.Order{UserID: "u1"}))
		c.Clear()
		require.NoError(t, s.Carts().Save(ctx, c))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, _ := s.Orders().List(ctx, models.OrderFilter{})
	assert.Empty(t, orders)
	got, _ := s.Carts().FindByUser(ctx, "u1")
	assert.Len(t, got.CartItems, 1)
}

func TestProductFilter(t *testing.T) {
	ctx := context.Background()
	products := New().Products()

	for _, p := range []models.Product{
		{Name: "Pikachu (Promo)", Price: 10, IsActive: true, ProductCategory: models.CategoryPokemon},
		{Name: "Blue-Eyes", Price: 50, IsActive: false, ProductCategory: models.CategoryYugioh},
		{Name: "GingerBrave", Price: 100, IsActive: true, ProductCategory: models.CategoryCookieRun},
	} {
		p := p
		require.NoError(t, products.Create(ctx, &p))
	}

	active, _ := products.List(ctx, models.ProductFilter{ActiveOnly: true})
	assert.Len(t, active, 2)

	byName, _ := products.List(ctx, models.ProductFilter{NameContains: "(promo"})
	require.Len(t, byName, 1)
	assert.Equal(t, "Pikachu (Promo)", byName[0].Name)

	lo, hi := 10.0, 50.0
	byPrice, _ := products.List(ctx, models.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.Len(t, byPrice, 2)
}
