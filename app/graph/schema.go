// Package graph exposes a read-only GraphQL view of the catalog. Prices are
// resolved for the viewer carried by the request context.
package graph

import (
	"context"
	"errors"
	"strconv"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/app/services"
	gql "github.com/shashiranjanraj/rigparts/pkg/graphql"
	"github.com/shashiranjanraj/rigparts/pkg/middleware"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
)

type node = map[string]interface{}

func viewer(ctx context.Context) pricing.Viewer {
	claims, _ := middleware.ClaimsFromCtx(ctx)
	return pricing.ViewerFromClaims(claims)
}

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
	},
})

var truckType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TruckDetails",
	Fields: graphql.Fields{
		"vin":          &graphql.Field{Type: graphql.String},
		"make":         &graphql.Field{Type: graphql.String},
		"model":        &graphql.Field{Type: graphql.String},
		"year":         &graphql.Field{Type: graphql.Int},
		"engine":       &graphql.Field{Type: graphql.String},
		"transmission": &graphql.Field{Type: graphql.String},
		"gvw":          &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"kind":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"code":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.String),
			Description: "Unit price for the current viewer.",
		},
		"retailPrice": &graphql.Field{
			Type:        graphql.String,
			Description: "List price; only shown to signed-in customers.",
		},
		"stockStatus": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"images":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"category":    &graphql.Field{Type: categoryType},
		"truck":       &graphql.Field{Type: truckType},
	},
})

func categoryNode(c models.Category) node {
	return node{
		"id":          strconv.FormatUint(uint64(c.ID), 10),
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
	}
}

func productNode(p models.Product, v pricing.Viewer) node {
	images := make([]interface{}, 0, len(p.Images))
	for _, path := range p.Images {
		images = append(images, storage.URL(path))
	}

	n := node{
		"id":          strconv.FormatUint(uint64(p.ID), 10),
		"kind":        p.Kind,
		"name":        p.Name,
		"code":        p.Code(),
		"description": p.Description,
		"price":       pricing.PriceFor(p, v).StringFixed(2),
		"stockStatus": p.StockStatus,
		"images":      images,
	}
	if v.Authenticated() {
		n["retailPrice"] = p.RetailPrice.StringFixed(2)
	}
	if p.Category != nil {
		n["category"] = categoryNode(*p.Category)
	}
	if p.Kind == models.KindTruck {
		n["truck"] = node{
			"vin":          p.VIN,
			"make":         p.Make,
			"model":        p.TruckModel,
			"year":         p.Year,
			"engine":       p.Engine,
			"transmission": p.Transmission,
			"gvw":          p.GVW,
		}
	}
	return n
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]interface{}, key string, def int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return def
}

// NewSchema builds the catalog schema backed by db.
func NewSchema(db *gorm.DB) (graphql.Schema, error) {
	catalog := services.NewCatalogService(db)

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					cats, err := catalog.Categories(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]interface{}, 0, len(cats))
					for _, c := range cats {
						out = append(out, categoryNode(c))
					}
					return out, nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"kind":     &graphql.ArgumentConfig{Type: graphql.String},
					"stock":    &graphql.ArgumentConfig{Type: graphql.String},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ps, _, err := catalog.Products(p.Context, repositories.ProductFilter{
						CategorySlug: stringArg(p.Args, "category"),
						Kind:         stringArg(p.Args, "kind"),
						Stock:        stringArg(p.Args, "stock"),
						Search:       stringArg(p.Args, "search"),
						Page:         intArg(p.Args, "page", 1),
						Limit:        intArg(p.Args, "limit", 20),
					})
					if err != nil {
						return nil, err
					}
					v := viewer(p.Context)
					out := make([]interface{}, 0, len(ps))
					for _, prod := range ps {
						out = append(out, productNode(prod, v))
					}
					return out, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := strconv.ParseUint(stringArg(p.Args, "id"), 10, 64)
					if err != nil {
						return nil, nil
					}
					prod, err := catalog.Product(p.Context, uint(id))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return productNode(prod, viewer(p.Context)), nil
				},
			},
		},
	})

	return gql.NewSchema(query)
}
