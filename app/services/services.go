// Package services holds the storefront's business rules. Services depend
// on the narrow persistence interfaces below, satisfied by the Mongo
// repositories and by the in-memory store.
package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/pkg/apperror"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id string, admin bool) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	// SetActive returns the product as it was before the write.
	SetActive(ctx context.Context, id string, active bool) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	Patch(ctx context.Context, id string, p models.OrderPatch) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn so that its writes commit or fail together when the
// backing store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache is the read-through cache used for catalog reads.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Image identifies a hosted asset.
type Image struct {
	URL      string
	PublicID string
}

// ImageHost stores and removes product images.
type ImageHost interface {
	Upload(ctx context.Context, u Upload) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

// notFound maps repositories.ErrNotFound to a NotFound error carrying msg.
// Other errors become Internal.
func notFound(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFoundf("%s", msg)
	}
	return apperror.Wrap(err, "Internal Server Error")
}

func validEmail(email string) bool { return strings.Contains(email, "@") }
