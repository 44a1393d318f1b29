package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupMountsWithPrefixAndMiddleware(t *testing.T) {
	r := New()

	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Group", "admin")
			next.ServeHTTP(w, req)
		})
	}

	admin := r.Group("/api/admin", tag)
	admin.Patch("/orders/{id}/status", "admin.orders.status", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/orders/7/status", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin", rec.Header().Get("X-Group"))
}

func TestURLFillsParams(t *testing.T) {
	r := New()
	r.Group("/api").Get("/products/{id}", "products.show", func(http.ResponseWriter, *http.Request) {})

	url, err := r.URL("products.show", map[string]string{"id": "12"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/12", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesAreSorted(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.Post("/orders", "orders.store", func(http.ResponseWriter, *http.Request) {})
	api.Get("/cart", "cart.show", func(http.ResponseWriter, *http.Request) {})
	api.Delete("/cart", "cart.clear", func(http.ResponseWriter, *http.Request) {})

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, Route{Method: http.MethodDelete, Path: "/api/cart", Name: "cart.clear"}, routes[0])
	assert.Equal(t, Route{Method: http.MethodGet, Path: "/api/cart", Name: "cart.show"}, routes[1])
	assert.Equal(t, "/api/orders", routes[2].Path)
}
