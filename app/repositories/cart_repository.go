package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/app/models"
)

// CartRepository stores one cart per user, keyed by userId.
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(CartsCollection)}
}

// FindByUser returns userID's cart or ErrNotFound.
func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	defer observe(CartsCollection, "find")()

	var c models.Cart
	if err := r.col.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	if c.CartItems == nil {
		c.CartItems = []models.LineItem{}
	}
	return &c, nil
}

// Save writes the user's items and total, creating the cart when absent.
// The server assigns _id on insert, so a racing first save matches the
// winner's document instead of colliding on _id. A duplicate-key error from
// the unique userId index surfaces as ErrDuplicate.
func (r *CartRepository) Save(ctx context.Context, c *models.Cart) error {
	defer observe(CartsCollection, "upsert")()

	if c.CartItems == nil {
		c.CartItems = []models.LineItem{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "cartItems", Value: c.CartItems},
		{Key: "totalPrice", Value: c.TotalPrice},
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Cart
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "userId", Value: c.UserID}}, update, opts).Decode(&saved)
	if err != nil {
		return translate(err)
	}
	c.ID = saved.ID
	return nil
}
