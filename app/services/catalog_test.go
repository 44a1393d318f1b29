package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/cache"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
)

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestSaveProduct_DefaultsCustomerPrice(t *testing.T) {
	svc := NewCatalogService(newDB(t))

	p, err := svc.SaveProduct(bg, 0, ProductInput{Name: "Slack adjuster", SKU: "SA-1", RetailPrice: d("80.00")})
	require.NoError(t, err)
	assert.Equal(t, models.KindPart, p.Kind)
	assert.Equal(t, models.StockInStock, p.StockStatus)
	assert.True(t, p.CustomerPrice.Equal(d("76")))
	assert.Equal(t, "SA-1", p.Code())
}

func TestSaveProduct_EnforcesPriceInvariant(t *testing.T) {
	svc := NewCatalogService(newDB(t))

	_, err := svc.SaveProduct(bg, 0, ProductInput{Name: "Hub", RetailPrice: d("100"), CustomerPrice: decPtr("100.01")})
	assert.Contains(t, fields(t, err), "customer_price")

	_, err = svc.SaveProduct(bg, 0, ProductInput{Name: "Hub", RetailPrice: d("0")})
	assert.Contains(t, fields(t, err), "retail_price")

	p, err := svc.SaveProduct(bg, 0, ProductInput{Name: "Hub", RetailPrice: d("100"), CustomerPrice: decPtr("100")})
	require.NoError(t, err)
	assert.True(t, p.CustomerPrice.Equal(p.RetailPrice))
}

func TestSaveProduct_UpdateAndCategory(t *testing.T) {
	db := newDB(t)
	svc := NewCatalogService(db)
	cat := models.Category{Name: "Brakes", Slug: "brakes"}
	require.NoError(t, db.Create(&cat).Error)

	p, err := svc.SaveProduct(bg, 0, ProductInput{Name: "Pad", SKU: "PAD-1", RetailPrice: d("30"), CategoryID: &cat.ID})
	require.NoError(t, err)
	require.NotNil(t, p.Category)
	assert.Equal(t, "brakes", p.Category.Slug)

	p, err = svc.SaveProduct(bg, p.ID, ProductInput{Name: "Pad set", SKU: "PAD-1", RetailPrice: d("32"), StockStatus: models.StockLowStock})
	require.NoError(t, err)
	assert.Equal(t, "Pad set", p.Name)
	assert.Equal(t, models.StockLowStock, p.StockStatus)
	assert.Nil(t, p.CategoryID)

	missing := uint(404)
	_, err = svc.SaveProduct(bg, 0, ProductInput{Name: "X", RetailPrice: d("1"), CategoryID: &missing})
	assert.Contains(t, fields(t, err), "category_id")

	_, err = svc.SaveProduct(bg, 9999, ProductInput{Name: "X", RetailPrice: d("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProducts_Filters(t *testing.T) {
	db := newDB(t)
	svc := NewCatalogService(db)
	brakes := models.Category{Name: "Brakes", Slug: "brakes"}
	require.NoError(t, db.Create(&brakes).Error)

	_, err := svc.SaveProduct(bg, 0, ProductInput{Name: "Brake drum", SKU: "BD-1", RetailPrice: d("150"), CategoryID: &brakes.ID})
	require.NoError(t, err)
	_, err = svc.SaveProduct(bg, 0, ProductInput{Name: "Oil filter", SKU: "OF-1", RetailPrice: d("20"), StockStatus: models.StockOutOfStock})
	require.NoError(t, err)
	_, err = svc.SaveProduct(bg, 0, ProductInput{Kind: models.KindTruck, Name: "2019 Cascadia", VIN: "1FUJGLDR9KLKA1234", RetailPrice: d("89000")})
	require.NoError(t, err)

	ps, pg, err := svc.Products(bg, repositories.ProductFilter{CategorySlug: "brakes"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Brake drum", ps[0].Name)
	require.NotNil(t, ps[0].Category)
	assert.Equal(t, int64(1), pg.Total)

	ps, _, err = svc.Products(bg, repositories.ProductFilter{Kind: models.KindTruck})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "1FUJGLDR9KLKA1234", ps[0].Code())

	ps, _, err = svc.Products(bg, repositories.ProductFilter{Search: "FILTER"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "OF-1", ps[0].Code())

	ps, _, err = svc.Products(bg, repositories.ProductFilter{Stock: models.StockInStock})
	require.NoError(t, err)
	assert.Len(t, ps, 2)

	_, _, err = svc.Products(bg, repositories.ProductFilter{Kind: "boat", Stock: "gone"})
	f := fields(t, err)
	assert.Contains(t, f, "kind")
	assert.Contains(t, f, "stock")
}

func TestDeleteProduct(t *testing.T) {
	db := newDB(t)
	svc := NewCatalogService(db)
	p := seedPart(t, db, "Gone", "G-1", "5", "4.75")

	require.NoError(t, svc.DeleteProduct(bg, p.ID))
	_, err := svc.Product(bg, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(bg, p.ID), ErrNotFound)
}

func TestAttachImage(t *testing.T) {
	db := newDB(t)
	svc := NewCatalogService(db)
	disk := storage.NewLocalDisk(t.TempDir(), "https://cdn.rigparts.test")
	storage.SetDefault(disk)
	p := seedPart(t, db, "Mirror", "MR-1", "60", "57")

	got, err := svc.AttachImage(bg, p.ID, "Front.JPG", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.True(t, strings.HasPrefix(got.Images[0], "products/"))
	assert.True(t, strings.HasSuffix(got.Images[0], ".jpg"))

	ok, err := disk.Exists(bg, got.Images[0])
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.AttachImage(bg, p.ID, "notes.txt", strings.NewReader("hi"), "text/plain")
	assert.Contains(t, fields(t, err), "image")
}

func TestProductsByID_SkipsMissing(t *testing.T) {
	db := newDB(t)
	a := seedPart(t, db, "Air dryer", "AD-1", "200", "190")
	b := seedPart(t, db, "Brake chamber", "BC-1", "60", "57")
	svc := NewCatalogService(db)

	got, err := svc.ProductsByID(bg, []uint{a.ID, b.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "AD-1", got[a.ID].Code())
	assert.True(t, got[b.ID].CustomerPrice.Equal(d("57")))
}

func TestSaveProduct_CacheForgetFailureIsLogged(t *testing.T) {
	prev := cache.RDB
	cache.RDB = redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() {
		_ = cache.RDB.Close()
		cache.RDB = prev
	})

	var buf bytes.Buffer
	ctx := logger.InjectLogger(bg, logger.New(&buf, "local"))
	svc := NewCatalogService(newDB(t))

	p, err := svc.SaveProduct(ctx, 0, ProductInput{Name: "Leaf spring", SKU: "LS-1", RetailPrice: d("150")})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Contains(t, buf.String(), "catalog: cache forget failed")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Contains(t, buf.String(), "catalog: cache forget failed")
}
