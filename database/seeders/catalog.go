package seeders

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
)

func init() {
	Register("admin user", SeedAdmin)
	Register("categories", SeedCategories)
	Register("products", SeedProducts)
}

// SeedAdmin creates the back-office account from ADMIN_EMAIL and
// ADMIN_PASSWORD when it does not exist yet.
func SeedAdmin(db *gorm.DB) error {
	ctx := context.Background()
	email := config.Get("ADMIN_EMAIL", "admin@rigparts.local")

	_, err := repositories.NewUserRepository(db).FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	_, err = services.NewAdminAuthService(db).
		CreateUser(ctx, "Administrator", email, config.Get("ADMIN_PASSWORD", "change-me-now"), models.RoleAdmin)
	return err
}

var categories = []models.Category{
	{Name: "Brakes", Slug: "brakes", Description: "Drums, shoes, chambers and slack adjusters."},
	{Name: "Engine", Slug: "engine", Description: "Filters, gaskets, turbos and cooling."},
	{Name: "Electrical", Slug: "electrical", Description: "Lighting, alternators, starters and wiring."},
	{Name: "Suspension", Slug: "suspension", Description: "Air springs, shocks and bushings."},
	{Name: "Trucks", Slug: "trucks", Description: "Used trucks for sale."},
}

func SeedCategories(db *gorm.DB) error {
	for _, c := range categories {
		if err := db.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

type seedProduct struct {
	category string
	input    services.ProductInput
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var products = []seedProduct{
	{"brakes", services.ProductInput{Name: "Brake Drum 16.5 x 7", SKU: "BD-1657", RetailPrice: price("189.99")}},
	{"brakes", services.ProductInput{Name: "Type 30/30 Spring Brake Chamber", SKU: "BC-3030", RetailPrice: price("89.00")}},
	{"brakes", services.ProductInput{Name: "Automatic Slack Adjuster", SKU: "SA-5510", RetailPrice: price("74.50"), StockStatus: models.StockLowStock}},
	{"engine", services.ProductInput{Name: "DD15 Oil Filter", SKU: "OF-DD15", RetailPrice: price("32.95")}},
	{"engine", services.ProductInput{Name: "ISX Turbocharger, Remanufactured", SKU: "TC-ISX-R", RetailPrice: price("2450.00")}},
	{"electrical", services.ProductInput{Name: "LED Stop/Turn/Tail Lamp", SKU: "LT-4400", RetailPrice: price("48.25")}},
	{"electrical", services.ProductInput{Name: "12V 160A Alternator", SKU: "ALT-160", RetailPrice: price("329.00"), StockStatus: models.StockOutOfStock}},
	{"suspension", services.ProductInput{Name: "Air Spring, Rolling Lobe", SKU: "AS-9781", RetailPrice: price("112.40")}},
}

// SeedProducts inserts the demo catalog once.
func SeedProducts(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	ctx := context.Background()
	catalog := services.NewCatalogService(db)
	for _, sp := range products {
		var c models.Category
		if err := db.Where("slug = ?", sp.category).First(&c).Error; err != nil {
			return err
		}
		in := sp.input
		in.CategoryID = &c.ID
		if _, err := catalog.SaveProduct(ctx, 0, in); err != nil {
			return err
		}
	}
	return nil
}
