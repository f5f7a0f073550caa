package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/app/models"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(UsersCollection)}
}

// Create inserts u and sets its ID. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer observe(UsersCollection, "insert")()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedOn.IsZero() {
		u.CreatedOn = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

// FindByID looks up a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer observe(UsersCollection, "find")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := r.col.FindOne(ctx, byID(oid)).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observe(UsersCollection, "find")()

	var u models.User
	err := r.col.FindOne(ctx, bson.D{{Key: "email", Value: strings.TrimSpace(email)}}).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// List returns every user, oldest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	defer observe(UsersCollection, "find")()

	users, err := findAll[models.User](ctx, r.col, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdOn", Value: 1}}))
	return users, translate(err)
}

// SetAdmin sets the isAdmin flag and returns the updated user.
func (r *UserRepository) SetAdmin(ctx context.Context, id string, admin bool) (*models.User, error) {
	return r.update(ctx, id, bson.D{{Key: "isAdmin", Value: admin}})
}

// UpdatePassword replaces the stored hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.update(ctx, id, bson.D{{Key: "password", Value: hash}})
	return err
}

// UpdateProfile applies the non-nil fields of upd and returns the result.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.D{}
	if upd.FirstName != nil {
		set = append(set, bson.E{Key: "firstName", Value: *upd.FirstName})
	}
	if upd.LastName != nil {
		set = append(set, bson.E{Key: "lastName", Value: *upd.LastName})
	}
	if upd.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *upd.Email})
	}
	if upd.MobileNo != nil {
		set = append(set, bson.E{Key: "mobileNo", Value: *upd.MobileNo})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.update(ctx, id, set)
}

func (r *UserRepository) update(ctx context.Context, id string, set bson.D) (*models.User, error) {
	defer observe(UsersCollection, "update")()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var u models.User
	err = r.col.FindOneAndUpdate(ctx, byID(oid), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
