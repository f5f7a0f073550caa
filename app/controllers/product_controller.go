package controllers

import (
	"context"
	"mime"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/ctx"
)

// imageField is the multipart part carrying a product image.
const imageField = "image"

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Create handles the multipart POST /products/create-product.
func (h *ProductController) Create(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindMultipart(&in) {
		return
	}
	img, done, ok := h.image(c)
	if !ok {
		return
	}
	defer done()

	p, err := h.products.Create(c.Context(), in, img)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(p)
}

func (h *ProductController) All(c *ctx.Context) {
	h.list(c, h.products.ListAll)
}

func (h *ProductController) Active(c *ctx.Context) {
	h.list(c, h.products.ListActive)
}

func (h *ProductController) ByCategory(c *ctx.Context) {
	products, err := h.products.ListByCategory(c.Context(), c.Query("category"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(products)
}

func (h *ProductController) Show(c *ctx.Context) {
	p, err := h.products.Get(c.Context(), c.Param("productId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(p)
}

// Update handles PATCH /products/{productId}/update-product. A JSON body
// updates fields only; a multipart body may also carry a new image.
func (h *ProductController) Update(c *ctx.Context) {
	var in models.ProductUpdate
	var img *services.Upload

	if mt, _, _ := mime.ParseMediaType(c.Header("Content-Type")); mt == "application/json" {
		if !c.BindJSON(&in) {
			return
		}
	} else {
		if !c.BindMultipart(&in) {
			return
		}
		var done func()
		var ok bool
		img, done, ok = h.image(c)
		if !ok {
			return
		}
		defer done()
	}

	p, err := h.products.Update(c.Context(), c.Param("productId"), in, img)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"message": "Product updated successfully", "product": p})
}

func (h *ProductController) Archive(c *ctx.Context) {
	prev, changed, err := h.products.SetActive(c.Context(), c.Param("productId"), false)
	if err != nil {
		c.Fail(err)
		return
	}
	if !changed {
		c.OK(map[string]any{"message": "Product already archived", "archivedProduct": prev})
		return
	}
	c.OK(map[string]any{"success": true, "message": "Product archived successfully"})
}

func (h *ProductController) Activate(c *ctx.Context) {
	prev, changed, err := h.products.SetActive(c.Context(), c.Param("productId"), true)
	if err != nil {
		c.Fail(err)
		return
	}
	if !changed {
		c.OK(map[string]any{"message": "Product already active", "activatedProduct": prev})
		return
	}
	c.OK(map[string]any{"success": true, "message": "Product activated successfully"})
}

func (h *ProductController) Delete(c *ctx.Context) {
	p, err := h.products.Delete(c.Context(), c.Param("productId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"success": true, "message": "Product deleted successfully", "deletedProduct": p})
}

func (h *ProductController) SearchByName(c *ctx.Context) {
	var in struct {
		Name string `json:"name"`
	}
	if !c.BindJSON(&in) {
		return
	}
	products, err := h.products.SearchByName(c.Context(), in.Name)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(products)
}

func (h *ProductController) SearchByPrice(c *ctx.Context) {
	var in services.PriceRange
	if !c.BindJSON(&in) {
		return
	}
	products, err := h.products.SearchByPrice(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(products)
}

func (h *ProductController) list(c *ctx.Context, fetch func(context.Context) ([]models.Product, error)) {
	products, err := fetch(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(products)
}

// image opens the optional image part. done closes it and must be called
// once the handler is finished with the upload. ok is false when a
// response has already been written.
func (h *ProductController) image(c *ctx.Context) (img *services.Upload, done func(), ok bool) {
	f, fh, present, err := c.FormFile(imageField)
	if err != nil {
		c.Fail(apperror.Validationf("Could not read the uploaded image"))
		return nil, nil, false
	}
	if !present {
		return nil, func() {}, true
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { f.Close() }, true
}
