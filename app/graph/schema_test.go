package graph

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/auth"
	"github.com/shashiranjanraj/rigparts/pkg/middleware"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
)

func run(t *testing.T, schema graphql.Schema, ctx context.Context, q string) map[string]interface{} {
	t.Helper()
	res := graphql.Do(graphql.Params{Schema: schema, RequestString: q, Context: ctx})
	require.Empty(t, res.Errors)
	data, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestCatalogQuery_PricesForViewer(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	cat := models.Category{Name: "Brakes", Slug: "brakes"}
	require.NoError(t, db.Create(&cat).Error)
	sku := "BC-30"
	p := models.Product{
		Kind: models.KindPart, Name: "Brake chamber", SKU: &sku, CategoryID: &cat.ID,
		RetailPrice: decimal.RequireFromString("100"), CustomerPrice: decimal.RequireFromString("95"),
		StockStatus: models.StockInStock,
	}
	require.NoError(t, db.Create(&p).Error)

	schema, err := NewSchema(db)
	require.NoError(t, err)

	q := `{ products(category: "brakes") { name code price retailPrice category { slug } } }`

	anon := run(t, schema, context.Background(), q)
	list := anon["products"].([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "100.00", item["price"])
	assert.Nil(t, item["retailPrice"])
	assert.Equal(t, "BC-30", item["code"])
	assert.Equal(t, "brakes", item["category"].(map[string]interface{})["slug"])

	member := middleware.WithClaims(context.Background(), &auth.Claims{UserID: 4, Role: models.RoleCustomer})
	list = run(t, schema, member, q)["products"].([]interface{})
	item = list[0].(map[string]interface{})
	assert.Equal(t, "95.00", item["price"])
	assert.Equal(t, "100.00", item["retailPrice"])
}

func TestProductQuery_MissingIsNull(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	schema, err := NewSchema(db)
	require.NoError(t, err)

	data := run(t, schema, context.Background(), `{ product(id: "42") { name } }`)
	assert.Nil(t, data["product"])
}
