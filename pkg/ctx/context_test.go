package ctx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/auth"
	appctx "github.com/jcorner/storefront/pkg/ctx"
)

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWrapAndJSON(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.OK(map[string]any{"ok": true})
		assert.Equal(t, http.StatusOK, c.WrittenStatus())
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestParam(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{orderId}", appctx.Wrap(func(c *appctx.Context) {
		c.OK(map[string]string{"id": c.Param("orderId"), "q": c.Query("q")})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc?q=1", nil))
	assert.JSONEq(t, `{"id":"abc","q":"1"}`, rec.Body.String())
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"John"}`))
		serve(func(c *appctx.Context) {
			var in input
			require.True(t, c.BindJSON(&in))
			assert.Equal(t, "John", in.Name)
		}, req)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		rec := serve(func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		}, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "The name field is required.", body["error"])
		assert.Contains(t, body["errors"], "name")
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		rec := serve(func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		}, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBindMultipartAndFormFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Pikachu"))
	fw, err := mw.CreateFormFile("image", "a.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	serve(func(c *appctx.Context) {
		var in struct {
			Name string `form:"name" validate:"required"`
		}
		require.True(t, c.BindMultipart(&in))
		assert.Equal(t, "Pikachu", in.Name)

		f, fh, ok, err := c.FormFile("image")
		require.NoError(t, err)
		require.True(t, ok)
		defer f.Close()
		assert.Equal(t, "a.png", fh.Filename)

		_, _, ok, err = c.FormFile("missing")
		assert.NoError(t, err)
		assert.False(t, ok)
	}, req)
}

func TestFail(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperror.NotFoundf("Order not found"), http.StatusNotFound, "Order not found"},
		{"conflict", apperror.Conflictf("Product already exists"), http.StatusConflict, "Product already exists"},
		{"unclassified", errors.New("socket closed"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(func(c *appctx.Context) { c.Fail(tt.err) }, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.msg, body["error"])
			assert.NotContains(t, body, "errors")
		})
	}
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	serve(func(c *appctx.Context) {
		_, ok := c.Identity()
		assert.False(t, ok)
		assert.Empty(t, c.UserID())
	}, req)

	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1", IsAdmin: true}))
	serve(func(c *appctx.Context) {
		id, ok := c.Identity()
		assert.True(t, ok)
		assert.True(t, id.IsAdmin)
		assert.Equal(t, "u1", c.UserID())
	}, req)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	serve(func(c *appctx.Context) {
		assert.Equal(t, "1.2.3.4", c.ClientIP())
	}, req)
}
