package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/pkg/apperror"
)

const msgItemNotInCart = "Item not found in the cart."

// AddItemInput is the body of an add-to-cart request. The subtotal is
// supplied by the client for the quantity being added.
type AddItemInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// QuantityInput is the body of an update-quantity request.
type QuantityInput struct {
	ProductID   string `json:"productId"`
	NewQuantity int    `json:"newQuantity"`
}

// CartService edits a user's single cart. Totals are always recomputed
// from the line subtotals.
type CartService struct {
	carts CartRepository
}

func NewCartService(carts CartRepository) *CartService {
	return &CartService{carts: carts}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Cart not found for the user")
	}
	return c, nil
}

// AddItem merges the item into the user's cart, creating the cart on first
// use. The product id is not checked against the catalog.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddItemInput) (*models.Cart, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" || in.Quantity == 0 || in.Subtotal == 0 {
		return nil, apperror.Validationf("Product ID, quantity, and subtotal are required")
	}
	if in.Quantity < 0 || in.Subtotal < 0 {
		return nil, apperror.Validationf("Quantity and subtotal must be positive numbers")
	}

	c, err := s.carts.FindByUser(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c = models.NewCart(userID)
	case err != nil:
		return nil, apperror.Wrap(err, "Internal Server Error")
	}

	c.Add(in.ProductID, in.Quantity, in.Subtotal)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	return c, nil
}

// UpdateQuantity sets a line's quantity at its current unit price.
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, in QuantityInput) (*models.Cart, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.NewQuantity < 0 {
		return nil, apperror.Validationf("Quantity must be a positive number")
	}
	if in.ProductID == "" || in.NewQuantity == 0 {
		return nil, apperror.Validationf("Product ID and new quantity are required.")
	}

	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Cart not found for the user.")
	}
	if !c.SetQuantity(in.ProductID, in.NewQuantity) {
		return nil, apperror.NotFoundf(msgItemNotInCart)
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	return c, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Cart not found for the user")
	}
	if !c.Remove(productID) {
		return nil, apperror.NotFoundf(msgItemNotInCart)
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	return c, nil
}

func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Cart not found.")
	}
	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	return c, nil
}
