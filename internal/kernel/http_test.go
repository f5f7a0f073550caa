package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/routes"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/internal/memstore"
	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/middleware"
	"github.com/jcorner/storefront/pkg/storage"
	"github.com/jcorner/storefront/pkg/testkit"
)

// cardPNG is the smallest body the image sniffer accepts as PNG.
var cardPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type harness struct {
	store  *memstore.Store
	kernel *HTTPKernel
	client *testkit.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost"+FilesPath)
	require.NoError(t, err)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc := routes.Services{
		Users:    services.NewUserService(store.Users(), tokens, bcrypt.MinCost),
		Products: services.NewProductService(store.Products(), services.NewImageService(disk), nil, time.Minute),
		Carts:    services.NewCartService(store.Carts()),
		Orders:   services.NewOrderService(store.Orders(), store.Carts(), store),
	}
	k := NewHTTPKernel(Config{
		Services: svc,
		Tokens:   tokens,
		Health:   store,
		Files:    disk.Handler(),
		CORS:     middleware.DefaultCORSOptions(),
	})
	return &harness{store: store, kernel: k, client: testkit.NewClient(t, k.Handler())}
}

// signUp registers and logs in a user, promoting them first when admin is
// set, and returns the access token.
func (h *harness) signUp(t *testing.T, email string, admin bool) string {
	t.Helper()
	res := h.client.Do(http.MethodPost, "/users/register", map[string]string{
		"firstName": "Test", "lastName": "User", "email": email,
		"mobileNo": "09171234567", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))

	if admin {
		u, err := h.store.Users().FindByEmail(context.Background(), email)
		require.NoError(t, err)
		_, err = h.store.Users().SetAdmin(context.Background(), u.ID.Hex(), true)
		require.NoError(t, err)
	}

	res = h.client.Do(http.MethodPost, "/users/login", map[string]string{"email": email, "password": "password1"})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var out struct{ Access string }
	res.Decode(&out)
	require.NotEmpty(t, out.Access)
	return out.Access
}

func (h *harness) createProduct(t *testing.T, admin *testkit.Client, name string, price float64) models.Product {
	t.Helper()
	res := admin.Multipart(http.MethodPost, "/products/create-product", map[string]string{
		"name": name, "description": "A card", "price": fmt.Sprint(price), "productCategory": models.CategoryPokemon,
	}, &testkit.File{Field: "image", Filename: "card.png", Content: cardPNG})
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	var p models.Product
	res.Decode(&p)
	return p
}

func TestScenarios(t *testing.T) {
	h := newHarness(t)
	vars := testkit.Vars{
		"userToken":  h.signUp(t, "shopper@shop.test", false),
		"adminToken": h.signUp(t, "admin@shop.test", true),
	}
	testkit.RunDir(t, h.kernel.Handler(), "testdata", vars)
}

func TestProductLifecycle(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))

	p := h.createProduct(t, admin, "Pikachu", 350)
	assert.True(t, p.IsActive)
	require.NotEmpty(t, p.ImageURL)

	// The uploaded image is served from the local disk.
	res := h.client.Do(http.MethodGet, p.ImageURL[len("http://localhost"):], nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = h.client.Do(http.MethodGet, "/products/active-product", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var active []models.Product
	res.Decode(&active)
	assert.Len(t, active, 1)

	res = admin.Do(http.MethodPatch, "/products/"+p.ID.Hex()+"/archive", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Product archived successfully", res.Map()["message"])

	res = admin.Do(http.MethodPatch, "/products/"+p.ID.Hex()+"/archive", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Product already archived", res.Map()["message"])

	res = h.client.Do(http.MethodGet, "/products/active-product", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = admin.Multipart(http.MethodPatch, "/products/"+p.ID.Hex()+"/update-product",
		map[string]string{"price": "400"}, nil)
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var upd struct{ Product models.Product }
	res.Decode(&upd)
	assert.Equal(t, 400.0, upd.Product.Price)
	assert.Equal(t, p.ImageURL, upd.Product.ImageURL)

	res = h.client.Do(http.MethodPost, "/products/search-by-name", map[string]string{"name": "pika"})
	require.Equal(t, http.StatusOK, res.Code)

	res = admin.Do(http.MethodDelete, "/products/"+p.ID.Hex()+"/delete", nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = h.client.Do(http.MethodGet, "/products/"+p.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreateProductRequiresImage(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))

	res := admin.Multipart(http.MethodPost, "/products/create-product", map[string]string{
		"name": "No Image", "description": "d", "price": "1", "productCategory": models.CategoryYugioh,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Product image is required", res.Map()["error"])
}

func TestCreateProductRejectsNonImageUpload(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))

	res := admin.Multipart(http.MethodPost, "/products/create-product", map[string]string{
		"name": "Evil", "description": "d", "price": "1", "productCategory": models.CategoryYugioh,
	}, &testkit.File{Field: "image", Filename: "evil.html", Content: []byte("<html><script>alert(1)</script></html>")})
	assert.Equal(t, http.StatusBadRequest, res.Code, string(res.Body))
	assert.Equal(t, "Product image must be a JPEG, PNG, GIF or WebP file", res.Map()["error"])

	res = admin.Do(http.MethodGet, "/products/all-product", nil)
	assert.Equal(t, http.StatusNotFound, res.Code, "no product is created")

	// A real PNG under a misleading name is stored with the sniffed extension.
	res = admin.Multipart(http.MethodPost, "/products/create-product", map[string]string{
		"name": "Disguised", "description": "d", "price": "1", "productCategory": models.CategoryYugioh,
	}, &testkit.File{Field: "image", Filename: "evil.html", Content: cardPNG})
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	var p models.Product
	res.Decode(&p)
	assert.True(t, strings.HasSuffix(p.ImageURL, ".png"), p.ImageURL)
}

func TestUpdateProductWithJSONBody(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))
	p := h.createProduct(t, admin, "Pikachu", 350)

	res := admin.Do(http.MethodPatch, "/products/"+p.ID.Hex()+"/update-product", map[string]any{"price": 20})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var upd struct{ Product models.Product }
	res.Decode(&upd)
	assert.Equal(t, 20.0, upd.Product.Price)
	assert.Equal(t, p.ImageURL, upd.Product.ImageURL)

	res = admin.Do(http.MethodPatch, "/products/"+p.ID.Hex()+"/update-product", map[string]any{"price": -1})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCartToOrderFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))
	shopper := h.client.As(h.signUp(t, "shopper@shop.test", false))

	p := h.createProduct(t, admin, "Charizard", 100)
	pid := p.ID.Hex()

	res := shopper.Do(http.MethodPost, "/cart/add-to-cart", map[string]any{"productId": pid, "quantity": 2, "subtotal": 200})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	res = shopper.Do(http.MethodPost, "/cart/add-to-cart", map[string]any{"productId": pid, "quantity": 1, "subtotal": 100})
	require.Equal(t, http.StatusOK, res.Code)

	var added struct{ Cart models.Cart }
	res.Decode(&added)
	require.Len(t, added.Cart.CartItems, 1)
	assert.Equal(t, 3, added.Cart.CartItems[0].Quantity)
	assert.Equal(t, 300.0, added.Cart.TotalPrice)

	res = shopper.Do(http.MethodPatch, "/cart/update-cart-quantity", map[string]any{"productId": pid, "newQuantity": 5})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))

	res = shopper.Do(http.MethodPatch, "/cart/"+primitiveHex()+"/remove-from-cart", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Item not found in the cart.", res.Map()["error"])

	res = shopper.Do(http.MethodPost, "/orders/checkout", nil)
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	var placed struct{ Order models.Order }
	res.Decode(&placed)
	assert.Equal(t, models.StatusPending, placed.Order.Status)
	require.Len(t, placed.Order.ProductsOrdered, 1)

	// Checkout empties the cart.
	res = shopper.Do(http.MethodGet, "/cart/get-cart", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var cart models.Cart
	res.Decode(&cart)
	assert.Empty(t, cart.CartItems)
	assert.Zero(t, cart.TotalPrice)

	res = shopper.Do(http.MethodGet, "/orders/my-orders", nil)
	require.Equal(t, http.StatusOK, res.Code)

	oid := placed.Order.ID.Hex()
	res = admin.Do(http.MethodPut, "/orders/update-status/"+oid, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = admin.Do(http.MethodPut, "/orders/update-status/"+oid, map[string]string{"status": models.StatusPaid})
	require.Equal(t, http.StatusOK, res.Code)

	res = admin.Do(http.MethodGet, "/orders/view-by-category/"+models.StatusPaid, nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = admin.Do(http.MethodGet, "/orders/view-by-category/"+models.StatusCompleted, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "No Completed orders found.", res.Map()["error"])

	res = admin.Do(http.MethodDelete, "/orders/delete/"+oid, nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = admin.Do(http.MethodDelete, "/orders/delete/"+oid, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestAdminCanPromoteAndDemote(t *testing.T) {
	h := newHarness(t)
	admin := h.client.As(h.signUp(t, "admin@shop.test", true))
	h.signUp(t, "ann@shop.test", false)

	u, err := h.store.Users().FindByEmail(context.Background(), "ann@shop.test")
	require.NoError(t, err)

	res := admin.Do(http.MethodPatch, "/users/"+u.ID.Hex()+"/set-as-admin", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var out struct{ UpdatedUser models.User }
	res.Decode(&out)
	assert.True(t, out.UpdatedUser.IsAdmin)
	assert.NotContains(t, string(res.Body), "password")

	res = admin.Do(http.MethodPatch, "/users/"+u.ID.Hex()+"/unset-admin", nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = admin.Do(http.MethodPatch, "/users/"+primitiveHex()+"/set-as-admin", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestUpdatePasswordAndProfile(t *testing.T) {
	h := newHarness(t)
	ann := h.client.As(h.signUp(t, "ann@shop.test", false))

	res := ann.Do(http.MethodPatch, "/users/update-password", map[string]string{"newPassword": strings.Repeat("p", 80)})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Password must not exceed 72 bytes", res.Map()["error"])

	res = ann.Do(http.MethodPatch, "/users/update-password", map[string]string{"newPassword": "password2"})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	assert.Equal(t, "Password reset successfully", res.Map()["message"])

	res = h.client.Do(http.MethodPost, "/users/login", map[string]string{"email": "ann@shop.test", "password": "password2"})
	assert.Equal(t, http.StatusOK, res.Code)

	res = ann.Do(http.MethodPatch, "/users/update-profile", map[string]string{"email": "no-at-sign"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Map()["errors"], "email")

	res = ann.Do(http.MethodPatch, "/users/update-profile", map[string]string{"mobileNo": "0917"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Map()["errors"], "mobileNo")
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	res := h.client.Do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Map()["status"])

	k := NewHTTPKernel(Config{Health: downPinger{}})
	rec := httptest.NewRecorder()
	k.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	h.kernel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRoutesArePrefixed(t *testing.T) {
	k := NewHTTPKernel(Config{Prefix: "/api"})
	var paths []string
	for _, ri := range k.Routes() {
		paths = append(paths, ri.Path)
	}
	assert.Contains(t, paths, "/api/users/login")
	assert.Contains(t, paths, "/api/orders/checkout")
	assert.Contains(t, paths, "/healthz")
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("down") }

// primitiveHex is a well-formed id that matches nothing.
func primitiveHex() string { return "0123456789abcdef01234567" }
