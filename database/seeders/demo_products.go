package seeders

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/apperror"
)

func init() {
	Register("demo-products", SeedDemoProducts)
}

// placeholderPNG is a 1x1 transparent PNG used as every demo image.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

var demoProducts = []services.ProductInput{
	{Name: "Pikachu Promo Card", Description: "Holo promo, near mint.", Price: price(350), ProductCategory: models.CategoryPokemon},
	{Name: "Charizard Booster Pack", Description: "Sealed booster pack.", Price: price(1200), ProductCategory: models.CategoryPokemon},
	{Name: "GingerBrave Sticker Set", Description: "Twelve glossy stickers.", Price: price(180), ProductCategory: models.CategoryCookieRun},
	{Name: "Blue-Eyes White Dragon", Description: "First edition reprint.", Price: price(950), ProductCategory: models.CategoryYugioh},
}

// SeedDemoProducts adds a small catalog. Products that already exist are
// left alone.
func SeedDemoProducts(ctx context.Context, env Env) error {
	for _, in := range demoProducts {
		img := &services.Upload{
			Filename:    "placeholder.png",
			ContentType: "image/png",
			Body:        bytes.NewReader(placeholderPNG),
		}
		_, err := env.Products.Create(ctx, in, img)
		if apperror.Is(err, apperror.Conflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("product %q: %w", in.Name, err)
		}
	}
	return nil
}

func price(v float64) *float64 { return &v }
