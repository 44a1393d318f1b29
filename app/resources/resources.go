// Package resources shapes models for the storefront and admin APIs. Money
// always leaves the server as a two-decimal string.
package resources

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rigparts/app/cart"
	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type CategoryResource struct{}

func (CategoryResource) ToArray(c models.Category) resource.Map {
	return resource.Map{
		"id":          c.ID,
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
	}
}

// ProductResource renders a product as Viewer sees it: "price" is the
// viewer's price. Signed-in customers also get the retail price and their
// saving for comparison.
type ProductResource struct {
	Viewer pricing.Viewer
}

func (r ProductResource) ToArray(p models.Product) resource.Map {
	images := make([]string, 0, len(p.Images))
	for _, path := range p.Images {
		images = append(images, storage.URL(path))
	}

	price := pricing.PriceFor(p, r.Viewer)
	out := resource.Map{
		"id":           p.ID,
		"kind":         p.Kind,
		"name":         p.Name,
		"description":  p.Description,
		"code":         p.Code(),
		"price":        money(price),
		"stock_status": p.StockStatus,
		"images":       images,
	}
	if p.SKU != nil {
		out["sku"] = *p.SKU
	}
	if r.Viewer.Authenticated() {
		out["retail_price"] = money(p.RetailPrice)
		out["savings"] = money(decimal.Max(p.RetailPrice.Sub(price), decimal.Zero))
	}
	if p.Category != nil {
		out["category"] = CategoryResource{}.ToArray(*p.Category)
	}
	if p.Kind == models.KindTruck {
		out["vin"] = p.VIN
		out["truck"] = resource.Map{
			"make":         p.Make,
			"model":        p.TruckModel,
			"year":         p.Year,
			"engine":       p.Engine,
			"transmission": p.Transmission,
			"gvw":          p.GVW,
		}
	}
	return out
}

// AdminProductResource exposes both price points for editing.
type AdminProductResource struct{}

func (AdminProductResource) ToArray(p models.Product) resource.Map {
	out := ProductResource{}.ToArray(p)
	out["retail_price"] = money(p.RetailPrice)
	out["customer_price"] = money(p.CustomerPrice)
	out["category_id"] = p.CategoryID
	out["image_paths"] = []string(p.Images)
	out["created_at"] = p.CreatedAt
	out["updated_at"] = p.UpdatedAt
	return out
}

// Cart renders a ledger with its running totals for delivery method.
func Cart(l *cart.Ledger, method string) resource.Map {
	lines := make([]resource.Map, 0, len(l.Lines()))
	for _, ln := range l.Lines() {
		line := resource.Map{
			"product_id": ln.ProductID,
			"name":       ln.Name,
			"code":       ln.Code,
			"unit_price": money(ln.UnitPrice),
			"quantity":   ln.Quantity,
			"subtotal":   money(ln.Subtotal()),
		}
		if ln.Image != "" {
			line["image"] = storage.URL(ln.Image)
		}
		lines = append(lines, line)
	}

	totals := pricing.TotalsFor(l.Subtotal(), method)
	out := resource.Map{
		"lines":           lines,
		"count":           l.Count(),
		"delivery_method": method,
		"subtotal":        money(totals.Subtotal),
		"tax":             money(totals.Tax),
		"shipping":        money(totals.Shipping),
		"total":           money(totals.Total),
	}
	if l.Viewer().Authenticated() {
		out["savings"] = money(l.Savings())
	}
	return out
}

type OrderResource struct{}

func (OrderResource) ToArray(o models.Order) resource.Map {
	items := make([]resource.Map, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, resource.Map{
			"product_id":   it.ProductID,
			"product_name": it.ProductName,
			"sku":          it.SKU,
			"quantity":     it.Quantity,
			"unit_price":   money(it.UnitPrice),
			"subtotal":     money(it.Subtotal),
		})
	}

	out := resource.Map{
		"id":     o.ID,
		"status": o.Status,
		"contact": resource.Map{
			"name":    o.ContactName,
			"email":   o.ContactEmail,
			"phone":   o.ContactPhone,
			"company": o.ContactCompany,
		},
		"delivery_method": o.DeliveryMethod,
		"subtotal":        money(o.Subtotal),
		"tax":             money(o.Tax),
		"shipping":        money(o.Shipping),
		"total":           money(o.Total),
		"notes":           o.Notes,
		"items":           items,
		"created_at":      o.CreatedAt,
		"updated_at":      o.UpdatedAt,
	}
	if o.DeliveryMethod != models.DeliveryPickup {
		out["address"] = resource.Map{
			"address":     o.Address,
			"city":        o.City,
			"province":    o.Province,
			"postal_code": o.PostalCode,
		}
	}
	if o.CustomerID != nil {
		out["customer_id"] = *o.CustomerID
	}
	return out
}

type CustomerResource struct{}

func (CustomerResource) ToArray(c models.Customer) resource.Map {
	return resource.Map{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"company":    c.Company,
		"phone":      c.Phone,
		"subscribed": c.Subscribed,
		"created_at": c.CreatedAt,
	}
}

type QuoteResource struct{}

func (QuoteResource) ToArray(q models.QuoteRequest) resource.Map {
	out := resource.Map{
		"id":               q.ID,
		"name":             q.Name,
		"email":            q.Email,
		"phone":            q.Phone,
		"company":          q.Company,
		"source":           q.Source,
		"part_description": q.PartDescription,
		"quantity":         q.Quantity,
		"message":          q.Message,
		"status":           q.Status,
		"created_at":       q.CreatedAt,
	}
	if q.ProductID != nil {
		out["product_id"] = *q.ProductID
	}
	if q.Product != nil {
		out["product"] = resource.Map{"id": q.Product.ID, "name": q.Product.Name, "code": q.Product.Code()}
	}
	return out
}

type CampaignResource struct{}

func (CampaignResource) ToArray(c models.Campaign) resource.Map {
	products := make([]resource.Map, 0, len(c.Products))
	for _, cp := range c.Products {
		products = append(products, resource.Map{
			"position": cp.Position,
			"product":  AdminProductResource{}.ToArray(cp.Product),
		})
	}
	return resource.Map{
		"id":              c.ID,
		"name":            c.Name,
		"subject":         c.Subject,
		"headline":        c.Headline,
		"intro":           c.Intro,
		"status":          c.Status,
		"recipient_count": c.RecipientCount,
		"scheduled_at":    c.ScheduledAt,
		"sent_at":         c.SentAt,
		"products":        products,
		"created_at":      c.CreatedAt,
	}
}
