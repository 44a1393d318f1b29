package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
)

// CustomerRepository handles storefront accounts.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	err := orm.On(r.db).WithContext(ctx).Where("id = ?", id).First(&c)
	return c, notFound(err)
}

// FindByEmail matches case-insensitively.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := orm.On(r.db).WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&c)
	return c, notFound(err)
}

func (r *CustomerRepository) FindByUnsubscribeToken(ctx context.Context, token string) (models.Customer, error) {
	var c models.Customer
	err := orm.On(r.db).WithContext(ctx).Where("unsubscribe_token = ?", token).First(&c)
	return c, notFound(err)
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update writes the given columns only.
func (r *CustomerRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribed returns every customer opted in to marketing email.
func (r *CustomerRepository) Subscribed(ctx context.Context) ([]models.Customer, error) {
	var cs []models.Customer
	err := orm.On(r.db).WithContext(ctx).Where("subscribed = ?", true).Order("id asc").Get(&cs)
	return cs, err
}

// CountSubscribed is the audience size of the next campaign.
func (r *CustomerRepository) CountSubscribed(ctx context.Context) (int64, error) {
	return orm.On(r.db).WithContext(ctx).Model(&models.Customer{}).Where("subscribed = ?", true).Count()
}

func (r *CustomerRepository) List(ctx context.Context, page, limit int) ([]models.Customer, orm.Pagination, error) {
	var cs []models.Customer
	pg, err := orm.On(r.db).WithContext(ctx).Model(&models.Customer{}).Order("id desc").Paginate(page, limit, &cs)
	return cs, pg, err
}

// UserRepository handles back-office accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := orm.On(r.db).WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u)
	return u, notFound(err)
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}
