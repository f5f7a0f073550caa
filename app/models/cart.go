package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product entry in a cart or an order.
type LineItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Quantity  int     `bson:"quantity"  json:"quantity"`
	Subtotal  float64 `bson:"subtotal"  json:"subtotal"`
}

// Cart is a user's pending selection. TotalPrice always equals the sum of
// the line subtotals and is never negative.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     string             `bson:"userId"        json:"userId"`
	CartItems  []LineItem         `bson:"cartItems"     json:"cartItems"`
	TotalPrice float64            `bson:"totalPrice"    json:"totalPrice"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, CartItems: []LineItem{}}
}

// find returns the index of productID in CartItems, or -1.
func (c *Cart) find(productID string) int {
	for i, item := range c.CartItems {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Has reports whether the cart holds productID.
func (c *Cart) Has(productID string) bool { return c.find(productID) >= 0 }

// Add merges quantity and subtotal into an existing line for productID or
// appends a new line.
func (c *Cart) Add(productID string, quantity int, subtotal float64) {
	if i := c.find(productID); i >= 0 {
		c.CartItems[i].Quantity += quantity
		c.CartItems[i].Subtotal = decimal.NewFromFloat(c.CartItems[i].Subtotal).
			Add(decimal.NewFromFloat(subtotal)).InexactFloat64()
	} else {
		c.CartItems = append(c.CartItems, LineItem{ProductID: productID, Quantity: quantity, Subtotal: subtotal})
	}
	c.Recalculate()
}

// SetQuantity changes a line's quantity, keeping its unit price
// (subtotal / quantity). Returns false when productID is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	item := &c.CartItems[i]
	if item.Quantity > 0 {
		unit := decimal.NewFromFloat(item.Subtotal).Div(decimal.NewFromInt(int64(item.Quantity)))
		item.Subtotal = unit.Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
	}
	item.Quantity = quantity
	c.Recalculate()
	return true
}

// Remove drops the line for productID. Returns false when it is absent.
func (c *Cart) Remove(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.CartItems = append(c.CartItems[:i], c.CartItems[i+1:]...)
	c.Recalculate()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.CartItems = []LineItem{}
	c.TotalPrice = 0
}

// Recalculate sets TotalPrice to the sum of line subtotals, floored at zero.
func (c *Cart) Recalculate() {
	c.TotalPrice = SumSubtotals(c.CartItems)
}

// SumSubtotals adds the line subtotals with decimal arithmetic and clamps
// the result at zero.
func SumSubtotals(items []LineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Subtotal))
	}
	if total.IsNegative() {
		return 0
	}
	return total.InexactFloat64()
}
