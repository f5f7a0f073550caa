package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/app/models"
)

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(OrdersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer observe(OrdersCollection, "insert")()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.OrderedOn.IsZero() {
		o.OrderedOn = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, o)
	return translate(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	defer observe(OrdersCollection, "find")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var o models.Order
	if err := r.col.FindOne(ctx, byID(oid)).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// List returns the orders matching f, newest first.
func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	defer observe(OrdersCollection, "find")()

	q := bson.D{}
	if f.UserID != "" {
		q = append(q, bson.E{Key: "userId", Value: f.UserID})
	}
	if f.Status != "" {
		q = append(q, bson.E{Key: "status", Value: f.Status})
	}
	orders, err := findAll[models.Order](ctx, r.col, q,
		options.Find().SetSort(bson.D{{Key: "orderedOn", Value: -1}}))
	return orders, translate(err)
}

// Patch applies the non-nil fields of p and returns the updated order.
func (r *OrderRepository) Patch(ctx context.Context, id string, p models.OrderPatch) (*models.Order, error) {
	set := bson.D{}
	if p.ProductsOrdered != nil {
		set = append(set, bson.E{Key: "productsOrdered", Value: *p.ProductsOrdered})
	}
	if p.TotalPrice != nil {
		set = append(set, bson.E{Key: "totalPrice", Value: *p.TotalPrice})
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *p.Status})
	}
	if p.OrderedOn != nil {
		set = append(set, bson.E{Key: "orderedOn", Value: p.OrderedOn.UTC()})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	defer observe(OrdersCollection, "update")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var o models.Order
	err = r.col.FindOneAndUpdate(ctx, byID(oid), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&o)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	defer observe(OrdersCollection, "delete")()

	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, byID(oid))
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
