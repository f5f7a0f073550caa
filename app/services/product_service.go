package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/metrics"
	"github.com/jcorner/storefront/pkg/validate"
)

const (
	msgProductNotFound = "Product not found"
	msgProductExists   = "Product already exists"
	msgImageType       = "Product image must be a JPEG, PNG, GIF or WebP file"

	cacheKeyActive  = "products:active"
	cacheKeyProduct = "product:"
)

// ProductInput is the body of a create request.
type ProductInput struct {
	Name            string   `json:"name"            form:"name"            validate:"required,max=200"`
	Description     string   `json:"description"     form:"description"     validate:"required"`
	Price           *float64 `json:"price"           form:"price"           validate:"required,gte=0"`
	ProductCategory string   `json:"productCategory" form:"productCategory" validate:"required,in=Pokemon,CookieRun,Yugioh"`
}

// PriceRange is the body of a price search. Both bounds are inclusive.
type PriceRange struct {
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

type ProductService struct {
	products ProductRepository
	images   ImageHost
	cache    Cache
	cacheTTL time.Duration
}

// NewProductService builds the catalog service. cache may be nil.
func NewProductService(products ProductRepository, images ImageHost, cache Cache, cacheTTL time.Duration) *ProductService {
	return &ProductService{products: products, images: images, cache: cache, cacheTTL: cacheTTL}
}

// Create uploads the image and inserts the product. The upload is removed
// again if the insert fails.
func (s *ProductService) Create(ctx context.Context, in ProductInput, img *Upload) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperror.ValidationFields(validate.First(errs), errs)
	}
	if img == nil {
		return nil, apperror.Validationf("Product image is required")
	}

	uploaded, err := s.images.Upload(ctx, *img)
	if err != nil {
		return nil, uploadFailed(err)
	}

	p := &models.Product{
		Name:            in.Name,
		Description:     in.Description,
		Price:           *in.Price,
		IsActive:        true,
		ProductCategory: in.ProductCategory,
		ImageURL:        uploaded.URL,
		ImagePublicID:   uploaded.PublicID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.discardImage(ctx, uploaded.PublicID)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflictf(msgProductExists)
		}
		return nil, apperror.Wrap(err, "Internal Server Error")
	}

	s.invalidate(ctx, p.ID.Hex())
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID.Hex(), "name", p.Name)
	return p, nil
}

func (s *ProductService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, models.ProductFilter{}, "No products found")
}

// ListActive serves the public catalog, from cache when possible.
func (s *ProductService) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.cache != nil && s.cache.Get(ctx, cacheKeyActive, &products) && len(products) > 0 {
		return products, nil
	}

	products, err := s.list(ctx, models.ProductFilter{ActiveOnly: true}, "No active products found")
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyActive, products, s.cacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("cache set failed", "key", cacheKeyActive, "error", err)
		}
	}
	return products, nil
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if !models.ValidCategory(category) {
		return nil, apperror.Validationf("Invalid or missing product category. Valid categories: %s.",
			strings.Join(models.Categories, ", "))
	}
	return s.list(ctx, models.ProductFilter{Category: category}, "No products found in category: "+category)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var cached models.Product
	if s.cache != nil && s.cache.Get(ctx, cacheKeyProduct+id, &cached) {
		return &cached, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyProduct+id, p, s.cacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("cache set failed", "key", cacheKeyProduct+id, "error", err)
		}
	}
	return p, nil
}

// Update applies upd and, when img is set, swaps the product image. The
// new image is uploaded first and the old one is only removed once the
// document points at the new one. A failed removal leaves an orphaned
// asset, which is logged and counted.
func (s *ProductService) Update(ctx context.Context, id string, upd models.ProductUpdate, img *Upload) (*models.Product, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		upd.Name = &name
		if name == "" {
			return nil, apperror.ValidationFields("Product name cannot be empty", map[string]string{"name": "Product name cannot be empty"})
		}
	}
	if errs := validate.Struct(upd); validate.HasErrors(errs) {
		return nil, apperror.ValidationFields(validate.First(errs), errs)
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}

	var uploaded Image
	if img != nil {
		uploaded, err = s.images.Upload(ctx, *img)
		if err != nil {
			return nil, uploadFailed(err)
		}
		upd.ImageURL = &uploaded.URL
		upd.ImagePublicID = &uploaded.PublicID
	}

	updated, err := s.products.Update(ctx, id, upd)
	if err != nil {
		if img != nil {
			s.discardImage(ctx, uploaded.PublicID)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflictf(msgProductExists)
		}
		return nil, notFound(err, msgProductNotFound)
	}

	if img != nil && existing.ImagePublicID != "" && existing.ImagePublicID != uploaded.PublicID {
		s.discardImage(ctx, existing.ImagePublicID)
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// SetActive archives or activates a product. changed is false when the
// product was already in the requested state; prev is the product as it
// was before the call.
func (s *ProductService) SetActive(ctx context.Context, id string, active bool) (prev *models.Product, changed bool, err error) {
	prev, err = s.products.SetActive(ctx, id, active)
	if err != nil {
		return nil, false, notFound(err, msgProductNotFound)
	}
	if prev.IsActive == active {
		return prev, false, nil
	}
	s.invalidate(ctx, id)
	return prev, true, nil
}

// Delete removes the product and, best effort, its image. Orders keep
// their own copies of line items and are not touched.
func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	s.discardImage(ctx, p.ImagePublicID)
	s.invalidate(ctx, id)
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	return p, nil
}

// SearchByName matches name as a case-insensitive literal substring.
func (s *ProductService) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.Validationf("Product name is required.")
	}
	return s.list(ctx, models.ProductFilter{NameContains: name}, "No product found")
}

func (s *ProductService) SearchByPrice(ctx context.Context, r PriceRange) ([]models.Product, error) {
	if r.MinPrice == nil || r.MaxPrice == nil {
		return nil, apperror.Validationf("Both minPrice and maxPrice are required")
	}
	if *r.MinPrice > *r.MaxPrice {
		return nil, apperror.Validationf("minPrice cannot be greater than maxPrice")
	}
	return s.list(ctx, models.ProductFilter{MinPrice: r.MinPrice, MaxPrice: r.MaxPrice},
		"No products found within the specified price range")
}

func (s *ProductService) list(ctx context.Context, f models.ProductFilter, emptyMsg string) ([]models.Product, error) {
	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	if len(products) == 0 {
		return nil, apperror.NotFoundf("%s", emptyMsg)
	}
	return products, nil
}

// discardImage deletes an asset that is no longer referenced. Failures are
// not returned to the caller.
func (s *ProductService) discardImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		metrics.OrphanedImages.Inc()
		logger.WithCtx(ctx).Warn("orphaned product image", "public_id", publicID, "error", err)
	}
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKeyActive, cacheKeyProduct+id); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "product_id", id, "error", err)
	}
}

func uploadFailed(err error) error {
	if errors.Is(err, ErrUnsupportedImage) {
		return apperror.Validationf(msgImageType)
	}
	return apperror.Wrap(err, "Internal Server Error")
}
