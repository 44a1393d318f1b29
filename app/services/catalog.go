package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/cache"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

const productCacheTTL = 10 * time.Minute

// ProductInput is an admin create or update of a catalog item. A nil
// CustomerPrice means "apply the standard customer discount".
type ProductInput struct {
	Kind          string           `json:"kind"         validate:"nullable,in=part|truck"`
	Name          string           `json:"name"         validate:"required,max=255"`
	Description   string           `json:"description"  validate:"nullable,max=10000"`
	SKU           string           `json:"sku"          validate:"nullable,max=100"`
	VIN           string           `json:"vin"          validate:"nullable,vin"`
	RetailPrice   decimal.Decimal  `json:"retail_price"`
	CustomerPrice *decimal.Decimal `json:"customer_price"`
	StockStatus   string           `json:"stock_status" validate:"nullable,in=in_stock|low_stock|out_of_stock"`
	CategoryID    *uint            `json:"category_id"`
	Make          string           `json:"make"         validate:"nullable,max=100"`
	Model         string           `json:"model"        validate:"nullable,max=100"`
	Year          int              `json:"year"         validate:"nullable,gte=1900,lte=2100"`
	Engine        string           `json:"engine"       validate:"nullable,max=255"`
	Transmission  string           `json:"transmission" validate:"nullable,max=255"`
	GVW           string           `json:"gvw"          validate:"nullable,max=100"`
}

// Validate applies the tag rules plus the pricing invariant.
func (in ProductInput) Validate() error {
	verr := &validate.Error{Fields: validate.Struct(in)}
	if !in.RetailPrice.IsPositive() {
		verr.Add("retail_price", "The retail_price must be greater than 0.")
	}
	if in.CustomerPrice != nil {
		switch {
		case in.CustomerPrice.IsNegative():
			verr.Add("customer_price", "The customer_price must be at least 0.")
		case in.CustomerPrice.GreaterThan(in.RetailPrice):
			verr.Add("customer_price", "The customer_price must not be greater than the retail_price.")
		}
	}
	return verr.OrNil()
}

// CatalogService serves the storefront catalog and the admin product editor.
type CatalogService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		products:   repositories.NewProductRepository(db),
		categories: repositories.NewCategoryRepository(db),
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.All(ctx)
}

func (s *CatalogService) Products(ctx context.Context, f repositories.ProductFilter) ([]models.Product, orm.Pagination, error) {
	verr := &validate.Error{}
	if f.Kind != "" && f.Kind != models.KindPart && f.Kind != models.KindTruck {
		verr.Add("kind", "The selected kind is invalid.")
	}
	if f.Stock != "" && !models.ValidStockStatus(f.Stock) {
		verr.Add("stock", "The selected stock is invalid.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, orm.Pagination{}, err
	}
	return s.products.List(ctx, f)
}

// Product loads one product, through the cache when Redis is up.
func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	return cache.Remember(ctx, productCacheKey(id), productCacheTTL, func() (models.Product, error) {
		return s.products.Find(ctx, id)
	})
}

// ProductsByID loads several products at once, keyed by id. Missing ids
// are absent from the map.
func (s *CatalogService) ProductsByID(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	return s.products.FindMany(ctx, ids)
}

// forgetProduct drops the cached copy of a product. A failure leaves a stale
// entry until its TTL runs out, so it is logged rather than returned.
func forgetProduct(ctx context.Context, id uint) {
	if err := cache.Forget(ctx, productCacheKey(id)); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache forget failed", "product_id", id, "error", err)
	}
}

// SaveProduct creates (id == 0) or replaces product id.
func (s *CatalogService) SaveProduct(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return models.Product{}, err
	}

	p := models.Product{}
	if id != 0 {
		existing, err := s.products.Find(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		p = existing
		p.Category = nil
	}

	if in.CategoryID != nil {
		if _, err := s.categories.Find(ctx, *in.CategoryID); errors.Is(err, repositories.ErrNotFound) {
			return models.Product{}, validate.Field("category_id", "The selected category_id is invalid.")
		} else if err != nil {
			return models.Product{}, fmt.Errorf("catalog: load category: %w", err)
		}
	}

	in.apply(&p)
	if err := s.products.Save(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("catalog: save product: %w", err)
	}
	forgetProduct(ctx, p.ID)

	logger.WithCtx(ctx).Info("catalog: product saved", "product_id", p.ID, "kind", p.Kind)
	return s.products.Find(ctx, p.ID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	forgetProduct(ctx, id)
	return nil
}

// AttachImage uploads an image to the default disk and appends it to the
// product's gallery.
func (s *CatalogService) AttachImage(ctx context.Context, id uint, filename string, r io.Reader, contentType string) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Product{}, validate.Field("image", "The image must be an image file.")
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if err := storage.Put(ctx, key, r, contentType); err != nil {
		return models.Product{}, fmt.Errorf("catalog: store image: %w", err)
	}

	p.Images = append(p.Images, key)
	p.Category = nil
	if err := s.products.Save(ctx, &p); err != nil {
		_ = storage.Delete(ctx, key)
		return models.Product{}, fmt.Errorf("catalog: save product: %w", err)
	}
	forgetProduct(ctx, id)
	return s.products.Find(ctx, id)
}

func productCacheKey(id uint) string { return fmt.Sprintf("catalog:product:%d", id) }

func (in ProductInput) normalized() ProductInput {
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	if in.Kind == "" {
		in.Kind = models.KindPart
	}
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	if in.StockStatus == "" {
		in.StockStatus = models.StockInStock
	}
	return in
}

func (in ProductInput) apply(p *models.Product) {
	p.Kind = in.Kind
	p.Name = in.Name
	p.Description = in.Description
	p.SKU = nil
	if in.SKU != "" {
		sku := in.SKU
		p.SKU = &sku
	}
	p.VIN = in.VIN
	p.RetailPrice = in.RetailPrice.Round(2)
	if in.CustomerPrice != nil {
		p.CustomerPrice = in.CustomerPrice.Round(2)
	} else {
		p.CustomerPrice = pricing.CustomerPriceFor(p.RetailPrice)
	}
	p.StockStatus = in.StockStatus
	p.CategoryID = in.CategoryID
	p.Make = in.Make
	p.TruckModel = in.Model
	p.Year = in.Year
	p.Engine = in.Engine
	p.Transmission = in.Transmission
	p.GVW = in.GVW
}
