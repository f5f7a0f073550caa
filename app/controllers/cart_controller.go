package controllers

import (
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/ctx"
)

// CartController serves the caller's own cart.
type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func (h *CartController) Show(c *ctx.Context) {
	cart, err := h.carts.Get(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(cart)
}

func (h *CartController) Add(c *ctx.Context) {
	var in services.AddItemInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := h.carts.AddItem(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Item added to cart successfully", "cart": cart})
}

func (h *CartController) UpdateQuantity(c *ctx.Context) {
	var in services.QuantityInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Items quantity updated successfully", "cart": cart})
}

func (h *CartController) Remove(c *ctx.Context) {
	cart, err := h.carts.RemoveItem(c.Context(), c.UserID(), c.Param("productId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Item removed successfully", "cart": cart})
}

func (h *CartController) Clear(c *ctx.Context) {
	cart, err := h.carts.Clear(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Cart cleared successfully", "cart": cart})
}
