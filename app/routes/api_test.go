package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/graph"
	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/auth"
	"github.com/shashiranjanraj/rigparts/pkg/router"
	"github.com/shashiranjanraj/rigparts/pkg/session"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
	"github.com/shashiranjanraj/rigparts/pkg/ws"
)

type fixture struct {
	db      *gorm.DB
	handler http.Handler
	part    models.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	config.Set("APP_URL", "https://shop.test")

	db := testkit.DB(t, models.All()...)
	schema, err := graph.NewSchema(db)
	require.NoError(t, err)

	r := router.New()
	r.Use(session.Middleware(session.CookieStore{}, session.DefaultOptions()))
	Register(r, Deps{
		DB:        db,
		Hub:       ws.NewHub(),
		Campaigns: services.NewCampaignService(db),
		Decoder:   services.NewVINDecoder(),
		Schema:    schema,
	})

	sku := "AF-2290"
	part := models.Product{
		Kind:          models.KindPart,
		Name:          "Air filter",
		SKU:           &sku,
		RetailPrice:   decimal.RequireFromString("100.00"),
		CustomerPrice: decimal.RequireFromString("90.00"),
		StockStatus:   models.StockInStock,
	}
	require.NoError(t, db.Create(&part).Error)

	return fixture{db: db, handler: r.Handler(), part: part}
}

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, uuid.NewString(), fmt.Sprintf("user%d@example.com", id), role)
	require.NoError(t, err)
	return tok
}

type cartBody struct {
	Count    int    `json:"count"`
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
	Lines    []struct {
		ProductID uint   `json:"product_id"`
		UnitPrice string `json:"unit_price"`
		Quantity  int    `json:"quantity"`
	} `json:"lines"`
}

// addToCart puts qty of the fixture part in a fresh session cart and returns
// the session cookies.
func addToCart(t *testing.T, f fixture, qty int) []*http.Cookie {
	t.Helper()
	res := testkit.NewRequest(http.MethodPost, "/api/cart/items").
		JSON(t, map[string]any{"product_id": f.part.ID, "quantity": qty}).
		Do(f.handler)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies, "cart must be persisted in the session cookie")
	return cookies
}

func getCart(t *testing.T, f fixture, cookies []*http.Cookie) cartBody {
	t.Helper()
	res := testkit.NewRequest(http.MethodGet, "/api/cart").Cookies(cookies...).Do(f.handler)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var body cartBody
	res.Decode(t, &body)
	return body
}

func TestCart_PersistsAcrossRequests(t *testing.T) {
	f := setup(t)
	cookies := addToCart(t, f, 2)

	body := getCart(t, f, cookies)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "200.00", body.Subtotal)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, "100.00", body.Lines[0].UnitPrice)

	// A new session starts empty.
	assert.Equal(t, 0, getCart(t, f, nil).Count)
}

// seedKits stores n parts with long names and six figure prices.
func seedKits(t *testing.T, f fixture, n int) []models.Product {
	t.Helper()
	out := make([]models.Product, n)
	for i := range out {
		sku := fmt.Sprintf("HD-REBUILD-KIT-%04d", i)
		out[i] = models.Product{
			Kind:          models.KindPart,
			Name:          fmt.Sprintf("Heavy duty transmission rebuild kit, 18 speed, variant %d", i),
			SKU:           &sku,
			RetailPrice:   decimal.RequireFromString("123456.78"),
			CustomerPrice: decimal.RequireFromString("117283.94"),
			StockStatus:   models.StockInStock,
			Images:        models.StringList{fmt.Sprintf("products/kits/%d/front-high-resolution.jpg", i)},
		}
		require.NoError(t, f.db.Create(&out[i]).Error)
	}
	return out
}

func addProduct(t *testing.T, f fixture, cookies []*http.Cookie, id uint) (testkit.Result, []*http.Cookie) {
	t.Helper()
	res := testkit.NewRequest(http.MethodPost, "/api/cart/items").
		JSON(t, map[string]any{"product_id": id, "quantity": 99}).
		Cookies(cookies...).
		Do(f.handler)
	if fresh := res.Result().Cookies(); len(fresh) > 0 {
		cookies = fresh
	}
	return res, cookies
}

func TestCart_CookieHoldsFiftyProducts(t *testing.T) {
	f := setup(t)
	var cookies []*http.Cookie
	for _, p := range seedKits(t, f, 50) {
		var res testkit.Result
		res, cookies = addProduct(t, f, cookies, p.ID)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	}

	body := getCart(t, f, cookies)
	assert.Len(t, body.Lines, 50)
	assert.Equal(t, 50*99, body.Count)
}

func TestCart_TooLargeForCookieIs422(t *testing.T) {
	f := setup(t)
	var cookies []*http.Cookie
	var res testkit.Result
	added := 0
	for _, p := range seedKits(t, f, 300) {
		res, cookies = addProduct(t, f, cookies, p.ID)
		if res.Code != http.StatusOK {
			break
		}
		added++
	}

	require.Equal(t, http.StatusUnprocessableEntity, res.Code, res.Body.String())
	assert.Contains(t, res.Envelope(t).Errors["cart"], "too large")
	assert.Len(t, getCart(t, f, cookies).Lines, added)
}

func TestCart_RejectsOutOfStock(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(&f.part).Update("stock_status", models.StockOutOfStock).Error)

	res := testkit.NewRequest(http.MethodPost, "/api/cart/items").
		JSON(t, map[string]any{"product_id": f.part.ID}).
		Do(f.handler)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestCheckout_ClearsCartOnSuccess(t *testing.T) {
	f := setup(t)
	cookies := addToCart(t, f, 1)

	res := testkit.NewRequest(http.MethodPost, "/api/checkout").
		Cookies(cookies...).
		JSON(t, map[string]any{
			"name":            "Dana Ruiz",
			"email":           "dana@fleet.example",
			"phone":           "555-0100",
			"delivery_method": models.DeliveryPickup,
		}).
		Do(f.handler)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var order struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
		Tax    string `json:"tax"`
		Total  string `json:"total"`
	}
	res.Decode(t, &order)
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "13.00", order.Tax)
	assert.Equal(t, "113.00", order.Total)

	var items int64
	f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	assert.EqualValues(t, 1, items)

	assert.Equal(t, 0, getCart(t, f, res.Result().Cookies()).Count)
}

func TestCheckout_KeepsCartOnValidationFailure(t *testing.T) {
	f := setup(t)
	cookies := addToCart(t, f, 3)

	res := testkit.NewRequest(http.MethodPost, "/api/checkout").
		Cookies(cookies...).
		JSON(t, map[string]any{
			"name":            "Dana Ruiz",
			"email":           "dana@fleet.example",
			"delivery_method": models.DeliveryShipping,
		}).
		Do(f.handler)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code, res.Body.String())

	errs := res.Envelope(t).Errors
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "address")

	var orders int64
	f.db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
	assert.Equal(t, 3, getCart(t, f, cookies).Count)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := setup(t)
	res := testkit.NewRequest(http.MethodPost, "/api/checkout").
		JSON(t, map[string]any{
			"name":            "Dana Ruiz",
			"email":           "dana@fleet.example",
			"phone":           "555-0100",
			"delivery_method": models.DeliveryPickup,
		}).
		Do(f.handler)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Envelope(t).Errors, "cart")
}

func TestProductPrice_DependsOnSignIn(t *testing.T) {
	f := setup(t)
	path := fmt.Sprintf("/api/products/%d", f.part.ID)

	var anon, member struct {
		Price       string `json:"price"`
		RetailPrice string `json:"retail_price"`
	}
	testkit.NewRequest(http.MethodGet, path).Do(f.handler).Decode(t, &anon)
	assert.Equal(t, "100.00", anon.Price)
	assert.Empty(t, anon.RetailPrice)

	testkit.NewRequest(http.MethodGet, path).
		Bearer(token(t, 7, models.RoleCustomer)).
		Do(f.handler).
		Decode(t, &member)
	assert.Equal(t, "90.00", member.Price)
	assert.Equal(t, "100.00", member.RetailPrice)
}

func TestTracking_PixelAndRedirect(t *testing.T) {
	f := setup(t)

	res := testkit.NewRequest(http.MethodGet, "/t/open?c=4&e=Pat%40Fleet.example").Do(f.handler)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "image/gif", res.Header().Get("Content-Type"))

	res = testkit.NewRequest(http.MethodGet, fmt.Sprintf("/t/click?c=4&e=pat%%40fleet.example&p=%d", f.part.ID)).Do(f.handler)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, fmt.Sprintf("https://shop.test/products/%d", f.part.ID), res.Header().Get("Location"))

	// Unrecordable hits still answer normally.
	res = testkit.NewRequest(http.MethodGet, "/t/click").Do(f.handler)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, "https://shop.test/", res.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, testkit.NewRequest(http.MethodGet, "/t/open").Do(f.handler).Code)

	var events []models.TrackingEvent
	require.NoError(t, f.db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventOpen, events[0].EventType)
	assert.Equal(t, "pat@fleet.example", events[0].CustomerEmail)
	assert.Equal(t, models.EventClick, events[1].EventType)
}

func TestUnsubscribePage(t *testing.T) {
	f := setup(t)
	cust := models.Customer{
		Name:             "Pat",
		Email:            "pat@fleet.example",
		Subscribed:       true,
		UnsubscribeToken: uuid.NewString(),
		AuthSubject:      uuid.NewString(),
		PasswordHash:     "x",
	}
	require.NoError(t, f.db.Create(&cust).Error)

	res := testkit.NewRequest(http.MethodGet, "/unsubscribe/"+cust.UnsubscribeToken).Do(f.handler)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "pat@fleet.example")

	var reloaded models.Customer
	require.NoError(t, f.db.First(&reloaded, cust.ID).Error)
	assert.False(t, reloaded.Subscribed)

	res = testkit.NewRequest(http.MethodGet, "/unsubscribe/"+uuid.NewString()).Do(f.handler)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestAdminOrderStatus(t *testing.T) {
	f := setup(t)
	order := models.Order{
		ContactName:    "Dana Ruiz",
		ContactEmail:   "dana@fleet.example",
		ContactPhone:   "555-0100",
		DeliveryMethod: models.DeliveryPickup,
		Subtotal:       decimal.RequireFromString("100.00"),
		Tax:            decimal.RequireFromString("13.00"),
		Shipping:       decimal.Zero,
		Total:          decimal.RequireFromString("113.00"),
		Status:         models.OrderPending,
	}
	require.NoError(t, f.db.Create(&order).Error)
	path := fmt.Sprintf("/api/admin/orders/%d/status", order.ID)
	body := map[string]any{"status": models.OrderPaid}

	res := testkit.NewRequest(http.MethodPatch, path).JSON(t, body).Do(f.handler)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = testkit.NewRequest(http.MethodPatch, path).JSON(t, body).Bearer(token(t, 7, models.RoleCustomer)).Do(f.handler)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = testkit.NewRequest(http.MethodPatch, path).JSON(t, body).Bearer(token(t, 1, models.RoleAdmin)).Do(f.handler)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var out struct {
		Status string `json:"status"`
	}
	res.Decode(t, &out)
	assert.Equal(t, models.OrderPaid, out.Status)

	var changes int64
	f.db.Model(&models.OrderStatusChange{}).Where("order_id = ?", order.ID).Count(&changes)
	assert.EqualValues(t, 1, changes)

	res = testkit.NewRequest(http.MethodPatch, path).
		JSON(t, map[string]any{"status": "shipped"}).
		Bearer(token(t, 1, models.RoleAdmin)).
		Do(f.handler)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestAdminRoutesAreNamed(t *testing.T) {
	r := router.New()
	Register(r, Deps{})

	path, ok := r.Path("admin.campaigns.send")
	require.True(t, ok)
	assert.Equal(t, "/api/admin/campaigns/{id}/send", path)

	path, ok = r.Path("cart.update")
	require.True(t, ok)
	assert.Equal(t, "/api/cart/items/{product}", path)
}
