package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product categories.
const (
	CategoryPokemon   = "Pokemon"
	CategoryCookieRun = "CookieRun"
	CategoryYugioh    = "Yugioh"
)

// Categories lists every valid product category.
var Categories = []string{CategoryPokemon, CategoryCookieRun, CategoryYugioh}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Each product references at most one hosted
// image through ImageURL and ImagePublicID.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	Name            string             `bson:"name"            json:"name"`
	Description     string             `bson:"description"     json:"description"`
	Price           float64            `bson:"price"           json:"price"`
	IsActive        bool               `bson:"isActive"        json:"isActive"`
	ProductCategory string             `bson:"productCategory" json:"productCategory"`
	ImageURL        string             `bson:"imageUrl"        json:"imageUrl"`
	ImagePublicID   string             `bson:"imagePublicId"   json:"imagePublicId"`
	CreatedOn       time.Time          `bson:"createdOn"       json:"createdOn"`
}

// ProductUpdate carries the admin-editable fields. Nil means unchanged.
type ProductUpdate struct {
	Name            *string  `json:"name"            validate:"nullable,max=200"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"           validate:"nullable,gte=0"`
	IsActive        *bool    `json:"isActive"`
	ProductCategory *string  `json:"productCategory" validate:"nullable,in=Pokemon,CookieRun,Yugioh"`

	// Set by the service when a new image replaces the old one.
	ImageURL      *string `json:"-"`
	ImagePublicID *string `json:"-"`
}

// ProductFilter narrows a product listing. Zero values don't filter.
type ProductFilter struct {
	ActiveOnly bool
	Category   string
	// NameContains is matched case-insensitively as a literal substring.
	NameContains string
	MinPrice     *float64
	MaxPrice     *float64
}
