package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/rigparts/pkg/auth"
	"github.com/shashiranjanraj/rigparts/pkg/middleware"
	"github.com/stretchr/testify/assert"
)

func serve(h http.Handler, claims *auth.Claims) int {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestHasRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := HasRole(auth.RoleAdmin, auth.RoleStaff)(ok)

	assert.Equal(t, http.StatusOK, serve(h, &auth.Claims{UserID: 1, Role: auth.RoleAdmin}))
	assert.Equal(t, http.StatusOK, serve(h, &auth.Claims{UserID: 2, Role: auth.RoleStaff}))
	assert.Equal(t, http.StatusForbidden, serve(h, &auth.Claims{UserID: 3, Role: auth.RoleCustomer}))
	assert.Equal(t, http.StatusForbidden, serve(h, nil))
}

func TestGuest(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Guest(ok)

	assert.Equal(t, http.StatusOK, serve(h, nil))
	assert.Equal(t, http.StatusConflict, serve(h, &auth.Claims{UserID: 3, Role: auth.RoleCustomer}))
}
