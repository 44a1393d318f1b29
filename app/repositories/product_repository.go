package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/collection"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
)

// ProductFilter narrows a catalog listing. Zero values mean "any".
type ProductFilter struct {
	CategorySlug string
	Kind         string
	Stock        string
	Search       string
	Page         int
	Limit        int
}

// ProductRepository handles catalog reads and admin writes.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find loads one product with its category.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.On(r.db).WithContext(ctx).Preload("Category").Where("products.id = ?", id).First(&p)
	return p, notFound(err)
}

// FindMany loads products by id, keyed by id. Missing ids are absent.
func (r *ProductRepository) FindMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []models.Product
	if err := orm.On(r.db).WithContext(ctx).Where("id IN ?", ids).Get(&ps); err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

// List returns one page of products matching f, newest first.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, orm.Pagination, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(f.Search)) + "%"

	q := orm.On(r.db).WithContext(ctx).Model(&models.Product{}).
		WhereIf(f.CategorySlug != "", "category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug)).
		WhereIf(f.Kind != "", "kind = ?", f.Kind).
		WhereIf(f.Stock != "", "stock_status = ?", f.Stock).
		WhereIf(strings.TrimSpace(f.Search) != "",
			"(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(vin) LIKE ?)", like, like, like).
		Order("products.created_at desc, products.id desc")

	var ps []models.Product
	pg, err := q.Paginate(f.Page, f.Limit, &ps)
	if err != nil {
		return nil, pg, err
	}
	if err := r.attachCategories(ctx, ps); err != nil {
		return nil, pg, err
	}
	return ps, pg, nil
}

func (r *ProductRepository) attachCategories(ctx context.Context, ps []models.Product) error {
	var ids []uint
	for _, p := range ps {
		if p.CategoryID != nil {
			ids = append(ids, *p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var cs []models.Category
	if err := orm.On(r.db).WithContext(ctx).Where("id IN ?", ids).Get(&cs); err != nil {
		return err
	}
	byID := collection.KeyBy(cs, func(c models.Category) uint { return c.ID })
	for i := range ps {
		if ps[i].CategoryID == nil {
			continue
		}
		if c, ok := byID[*ps[i].CategoryID]; ok {
			ps[i].Category = &c
		}
	}
	return nil
}

// Save inserts or updates p.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(p).Error
}

// Delete soft-deletes a product. Orders keep their snapshot.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryRepository reads categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := orm.On(r.db).WithContext(ctx).Order("name asc").Get(&cs)
	return cs, err
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := orm.On(r.db).WithContext(ctx).Where("id = ?", id).First(&c)
	return c, notFound(err)
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}
