package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/app/models"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(ProductsCollection)}
}

// Create inserts p and sets its ID. A taken name yields ErrDuplicate.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer observe(ProductsCollection, "insert")()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedOn.IsZero() {
		p.CreatedOn = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	defer observe(ProductsCollection, "find")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := r.col.FindOne(ctx, byID(oid)).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns the products matching f, oldest first.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	defer observe(ProductsCollection, "find")()

	products, err := findAll[models.Product](ctx, r.col, productQuery(f),
		options.Find().SetSort(bson.D{{Key: "createdOn", Value: 1}}))
	return products, translate(err)
}

func productQuery(f models.ProductFilter) bson.D {
	q := bson.D{}
	if f.ActiveOnly {
		q = append(q, bson.E{Key: "isActive", Value: true})
	}
	if f.Category != "" {
		q = append(q, bson.E{Key: "productCategory", Value: f.Category})
	}
	if f.NameContains != "" {
		q = append(q, bson.E{Key: "name", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(f.NameContains),
			Options: "i",
		}})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.D{}
		if f.MinPrice != nil {
			price = append(price, bson.E{Key: "$gte", Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			price = append(price, bson.E{Key: "$lte", Value: *f.MaxPrice})
		}
		q = append(q, bson.E{Key: "price", Value: price})
	}
	return q
}

// Update applies the non-nil fields of upd and returns the updated product.
func (r *ProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	set := bson.D{}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *upd.Description})
	}
	if upd.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *upd.Price})
	}
	if upd.IsActive != nil {
		set = append(set, bson.E{Key: "isActive", Value: *upd.IsActive})
	}
	if upd.ProductCategory != nil {
		set = append(set, bson.E{Key: "productCategory", Value: *upd.ProductCategory})
	}
	if upd.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *upd.ImageURL})
	}
	if upd.ImagePublicID != nil {
		set = append(set, bson.E{Key: "imagePublicId", Value: *upd.ImagePublicID})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndSet(ctx, id, set, options.After)
}

// SetActive sets isActive and returns the product as it was before the
// write, so callers can tell whether anything changed.
func (r *ProductRepository) SetActive(ctx context.Context, id string, active bool) (*models.Product, error) {
	return r.findOneAndSet(ctx, id, bson.D{{Key: "isActive", Value: active}}, options.Before)
}

// Delete removes the product and returns it.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	defer observe(ProductsCollection, "delete")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := r.col.FindOneAndDelete(ctx, byID(oid)).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) findOneAndSet(ctx context.Context, id string, set bson.D, doc options.ReturnDocument) (*models.Product, error) {
	defer observe(ProductsCollection, "update")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	err = r.col.FindOneAndUpdate(ctx, byID(oid), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(doc)).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
