package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a storefront account.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName string             `bson:"firstName"     json:"firstName"`
	LastName  string             `bson:"lastName"      json:"lastName"`
	Email     string             `bson:"email"         json:"email"`
	MobileNo  string             `bson:"mobileNo"      json:"mobileNo"`
	Password  string             `bson:"password"      json:"-"` // bcrypt hash, never serialised
	IsAdmin   bool               `bson:"isAdmin"       json:"isAdmin"`
	CreatedOn time.Time          `bson:"createdOn"     json:"createdOn"`
}

// ProfileUpdate carries the user-editable fields. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"nullable,max=100"`
	LastName  *string `json:"lastName"  validate:"nullable,max=100"`
	Email     *string `json:"email"     validate:"nullable,contains=@"`
	MobileNo  *string `json:"mobileNo"  validate:"nullable,size=11"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.MobileNo == nil
}
