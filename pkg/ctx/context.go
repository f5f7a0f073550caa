// Package ctx provides the request context storefront handlers run on.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding, identity and
// JSON responses:
//
//	func (h *ProductController) Show(c *ctx.Context) {
//	    p, err := h.products.Get(c.Context(), c.Param("productId"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.JSON(http.StatusOK, p)
//	}
//
//	// Register with ctx.Wrap:
//	r.Get("/products/{productId}", "products.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/bind"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/orders/{orderId}" → c.Param("orderId")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns the authenticated caller. ok is false on public routes.
func (c *Context) Identity() (id auth.Identity, ok bool) {
	return auth.FromContext(c.R.Context())
}

// UserID is the authenticated caller's id, or "" on public routes.
func (c *Context) UserID() string {
	id, _ := c.Identity()
	return id.UserID
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation. On failure
// it writes a 400 and returns false.
//
//	var in services.QuantityInput
//	if !c.BindJSON(&in) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	return c.bound(errs, err)
}

// BindMultipart parses a multipart form into dest and runs validation. On
// failure it writes a 400 and returns false.
func (c *Context) BindMultipart(dest any) bool {
	errs, err := bind.Multipart(c.R, dest)
	return c.bound(errs, err)
}

func (c *Context) bound(errs map[string]string, err error) bool {
	if err != nil {
		c.Fail(apperror.Validationf("%s", err.Error()))
		return false
	}
	if validate.HasErrors(errs) {
		c.Fail(apperror.ValidationFields(validate.First(errs), errs))
		return false
	}
	return true
}

// FormFile returns the uploaded file named field after BindMultipart.
// ok is false when the form has no such file; err reports a file that
// could not be opened. The caller must close the file.
func (c *Context) FormFile(field string) (f multipart.File, fh *multipart.FileHeader, ok bool, err error) {
	f, fh, err = bind.File(c.R, field)
	if errors.Is(err, bind.ErrNoFile) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return f, fh, true, nil
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	if err := json.NewEncoder(c.W).Encode(v); err != nil {
		logger.WithCtx(c.Context()).Warn("ctx: encode body", "error", err)
	}
}

// OK writes a 200 JSON response.
func (c *Context) OK(v any) { c.JSON(http.StatusOK, v) }

// Created writes a 201 JSON response.
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

// Fail writes err as {"error": message}, adding "errors" when it carries
// field messages. The status comes from the error's apperror.Kind; errors
// without a Kind are logged and sent as a generic 500.
func (c *Context) Fail(err error) {
	e := apperror.As(err)
	if e.Kind == apperror.Internal {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method, "path", c.R.URL.Path, "error", err)
	}

	body := map[string]any{"error": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	c.JSON(e.Kind.Status(), body)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
