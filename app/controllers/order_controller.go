package controllers

import (
	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (h *OrderController) Checkout(c *ctx.Context) {
	o, err := h.orders.Checkout(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"message": "Ordered successfully", "order": o})
}

func (h *OrderController) Mine(c *ctx.Context) {
	h.respondList(c)(h.orders.ListMine(c.Context(), c.UserID()))
}

func (h *OrderController) All(c *ctx.Context) {
	h.respondList(c)(h.orders.ListAll(c.Context()))
}

func (h *OrderController) ByStatus(c *ctx.Context) {
	h.respondList(c)(h.orders.ListByStatus(c.Context(), c.Param("status")))
}

func (h *OrderController) UpdateStatus(c *ctx.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if !c.BindJSON(&in) {
		return
	}
	o, err := h.orders.UpdateStatus(c.Context(), c.Param("orderId"), in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Order status updated successfully", "order": o})
}

func (h *OrderController) UpdateInfo(c *ctx.Context) {
	var in models.OrderPatch
	if !c.BindJSON(&in) {
		return
	}
	o, err := h.orders.UpdateInfo(c.Context(), c.Param("orderId"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Order information updated successfully", "order": o})
}

func (h *OrderController) Delete(c *ctx.Context) {
	if err := h.orders.Delete(c.Context(), c.Param("orderId")); err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"message": "Order deleted successfully"})
}

// respondList writes {"orders": [...]} or the listing error.
func (h *OrderController) respondList(c *ctx.Context) func([]models.Order, error) {
	return func(orders []models.Order, err error) {
		if err != nil {
			c.Fail(err)
			return
		}
		c.OK(map[string]any{"orders": orders})
	}
}
