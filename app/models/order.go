package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	StatusPending   = "Pending"
	StatusPaid      = "Paid"
	StatusCompleted = "Completed"
)

// Statuses lists every valid order status.
var Statuses = []string{StatusPending, StatusPaid, StatusCompleted}

// ValidStatus reports whether s is one of Statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is a placed checkout. Line items are copied from the cart, so
// orders survive later product deletion.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	UserID          string             `bson:"userId"          json:"userId"`
	ProductsOrdered []LineItem         `bson:"productsOrdered" json:"productsOrdered"`
	TotalPrice      float64            `bson:"totalPrice"      json:"totalPrice"`
	OrderedOn       time.Time          `bson:"orderedOn"       json:"orderedOn"`
	Status          string             `bson:"status"          json:"status"`
}

// OrderPatch is the admin's free-form order edit. Nil means unchanged.
// Status is not checked against Statuses here.
type OrderPatch struct {
	ProductsOrdered *[]LineItem `json:"productsOrdered"`
	TotalPrice      *float64    `json:"totalPrice" validate:"nullable,gte=0"`
	Status          *string     `json:"status"`
	OrderedOn       *time.Time  `json:"orderedOn"`
}

// Empty reports whether the patch changes nothing.
func (p OrderPatch) Empty() bool {
	return p.ProductsOrdered == nil && p.TotalPrice == nil && p.Status == nil && p.OrderedOn == nil
}

// OrderFilter narrows an order listing. Zero values don't filter.
type OrderFilter struct {
	UserID string
	Status string
}
