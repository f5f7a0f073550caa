package routes

import (
	"github.com/jcorner/storefront/app/controllers"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/ctx"
	"github.com/jcorner/storefront/pkg/middleware"
	"github.com/jcorner/storefront/pkg/rbac"
	"github.com/jcorner/storefront/pkg/router"
)

// Services is everything the API routes call into.
type Services struct {
	Users    *services.UserService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
}

// RegisterAPI mounts the storefront API under prefix.
func RegisterAPI(r *router.Router, prefix string, svc Services, tokens middleware.TokenVerifier) {
	users := controllers.NewUserController(svc.Users)
	products := controllers.NewProductController(svc.Products)
	carts := controllers.NewCartController(svc.Carts)
	orders := controllers.NewOrderController(svc.Orders)

	api := r.Group(prefix)
	authed := middleware.Authenticate(tokens)

	u := api.Group("/users")
	u.Post("/register", "users.register", ctx.Wrap(users.Register))
	u.Post("/login", "users.login", ctx.Wrap(users.Login))
	uAuth := u.Group("", authed)
	uAuth.Get("/details", "users.details", ctx.Wrap(users.Details))
	uAuth.Patch("/update-password", "users.update-password", ctx.Wrap(users.UpdatePassword))
	uAuth.Patch("/update-profile", "users.update-profile", ctx.Wrap(users.UpdateProfile))
	uAdmin := uAuth.Group("", rbac.AdminOnly)
	uAdmin.Get("/all-users", "users.all", ctx.Wrap(users.All))
	uAdmin.Patch("/{id}/set-as-admin", "users.set-admin", ctx.Wrap(users.SetAdmin))
	uAdmin.Patch("/{id}/unset-admin", "users.unset-admin", ctx.Wrap(users.UnsetAdmin))

	p := api.Group("/products")
	p.Get("/active-product", "products.active", ctx.Wrap(products.Active))
	p.Get("/view-products-by", "products.by-category", ctx.Wrap(products.ByCategory))
	p.Get("/{productId}", "products.show", ctx.Wrap(products.Show))
	p.Post("/search-by-name", "products.search-name", ctx.Wrap(products.SearchByName))
	p.Post("/search-by-price", "products.search-price", ctx.Wrap(products.SearchByPrice))
	pAdmin := p.Group("", authed, rbac.AdminOnly)
	pAdmin.Post("/create-product", "products.create", ctx.Wrap(products.Create))
	pAdmin.Get("/all-product", "products.all", ctx.Wrap(products.All))
	pAdmin.Patch("/{productId}/update-product", "products.update", ctx.Wrap(products.Update))
	pAdmin.Patch("/{productId}/archive", "products.archive", ctx.Wrap(products.Archive))
	pAdmin.Patch("/{productId}/activate", "products.activate", ctx.Wrap(products.Activate))
	pAdmin.Delete("/{productId}/delete", "products.delete", ctx.Wrap(products.Delete))

	c := api.Group("/cart", authed)
	c.Get("/get-cart", "cart.show", ctx.Wrap(carts.Show))
	c.Post("/add-to-cart", "cart.add", ctx.Wrap(carts.Add))
	c.Patch("/update-cart-quantity", "cart.update-quantity", ctx.Wrap(carts.UpdateQuantity))
	c.Patch("/{productId}/remove-from-cart", "cart.remove", ctx.Wrap(carts.Remove))
	c.Put("/clear-cart", "cart.clear", ctx.Wrap(carts.Clear))

	o := api.Group("/orders", authed)
	o.Post("/checkout", "orders.checkout", ctx.Wrap(orders.Checkout))
	o.Get("/my-orders", "orders.mine", ctx.Wrap(orders.Mine))
	oAdmin := o.Group("", rbac.AdminOnly)
	oAdmin.Get("/all-orders", "orders.all", ctx.Wrap(orders.All))
	oAdmin.Put("/update-status/{orderId}", "orders.update-status", ctx.Wrap(orders.UpdateStatus))
	oAdmin.Put("/update-info/{orderId}", "orders.update-info", ctx.Wrap(orders.UpdateInfo))
	oAdmin.Delete("/delete/{orderId}", "orders.delete", ctx.Wrap(orders.Delete))
	oAdmin.Get("/view-by-category/{status}", "orders.by-status", ctx.Wrap(orders.ByStatus))
}
