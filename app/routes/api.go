// Package routes mounts every HTTP endpoint.
package routes

import (
	"net/http"

	gographql "github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/controllers"
	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/graphql"
	"github.com/shashiranjanraj/rigparts/pkg/middleware"
	"github.com/shashiranjanraj/rigparts/pkg/rbac"
	"github.com/shashiranjanraj/rigparts/pkg/router"
	"github.com/shashiranjanraj/rigparts/pkg/ws"
)

// Deps are the long-lived values handlers share.
type Deps struct {
	DB        *gorm.DB
	Hub       *ws.Hub
	Campaigns *services.CampaignService
	Decoder   *services.VINDecoder
	Schema    gographql.Schema
}

// Register mounts the storefront, tracking and back-office routes.
func Register(r *router.Router, d Deps) {
	catalog := controllers.NewCatalogController(d.DB)
	cart := controllers.NewCartController(d.DB)
	checkout := controllers.NewCheckoutController(d.DB)
	orders := controllers.NewOrderController(d.DB)
	account := controllers.NewAccountController(d.DB)
	adminAuth := controllers.NewAdminAuthController(d.DB)
	quotes := controllers.NewQuoteController(d.DB)
	campaigns := controllers.NewCampaignController(d.DB, d.Campaigns)
	tracking := controllers.NewTrackingController(d.DB)
	trucks := controllers.NewTruckController(d.DB, d.Decoder)
	feed := controllers.NewFeedController(d.Hub)

	// Email links: tracking pixel, click-through and unsubscribe page.
	web := r.Group("")
	web.Get("/t/open", "tracking.open", ctx.Wrap(tracking.Open))
	web.Get("/t/click", "tracking.click", ctx.Wrap(tracking.Click))
	web.Get("/unsubscribe/{token}", "unsubscribe.show", ctx.Wrap(tracking.Unsubscribe))
	web.Handle(http.MethodGet, "/storage/*", "storage",
		http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot()))))
	web.Handle(http.MethodPost, "/graphql", "graphql", graphql.Handler(d.Schema), middleware.OptionalAuth)

	// Storefront. Prices depend on who is asking, so auth is optional.
	api := r.Group("/api", middleware.OptionalAuth)
	api.Get("/categories", "categories.index", ctx.Wrap(catalog.Categories))
	api.Get("/products", "products.index", ctx.Wrap(catalog.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(catalog.Show))

	api.Get("/cart", "cart.show", ctx.Wrap(cart.Show))
	api.Delete("/cart", "cart.clear", ctx.Wrap(cart.Clear))
	api.Post("/cart/items", "cart.add", ctx.Wrap(cart.Add))
	api.Patch("/cart/items/{product}", "cart.update", ctx.Wrap(cart.Update))
	api.Delete("/cart/items/{product}", "cart.remove", ctx.Wrap(cart.Remove))
	api.Post("/checkout", "checkout.store", ctx.Wrap(checkout.Store))

	api.Post("/quotes", "quotes.store", ctx.Wrap(quotes.Store))
	api.Post("/unsubscribe/{token}", "unsubscribe.store", ctx.Wrap(tracking.UnsubscribeJSON))

	guest := api.Group("/auth", rbac.Guest)
	guest.Post("/signup", "auth.signup", ctx.Wrap(account.Signup))
	guest.Post("/login", "auth.login", ctx.Wrap(account.Login))

	me := r.Group("/api/account", middleware.AuthMiddleware, rbac.HasRole(models.RoleCustomer))
	me.Get("", "account.show", ctx.Wrap(account.Show))
	me.Patch("", "account.update", ctx.Wrap(account.Update))
	me.Get("/orders", "account.orders", ctx.Wrap(orders.Mine))

	// Back office.
	r.Group("/api/admin").Post("/login", "admin.login", ctx.Wrap(adminAuth.Login))

	admin := r.Group("/api/admin", middleware.AuthMiddleware, rbac.HasRole(models.RoleAdmin, models.RoleStaff))
	admin.Get("/ws", "admin.feed.ws", ctx.Wrap(feed.Socket))
	admin.Get("/events", "admin.feed.sse", ctx.Wrap(feed.Events))

	admin.Get("/orders", "admin.orders.index", ctx.Wrap(orders.Index))
	admin.Get("/orders/{id}", "admin.orders.show", ctx.Wrap(orders.Show))
	admin.Patch("/orders/{id}/status", "admin.orders.status", ctx.Wrap(orders.UpdateStatus))

	admin.Get("/products", "admin.products.index", ctx.Wrap(catalog.AdminIndex))
	admin.Post("/products", "admin.products.store", ctx.Wrap(catalog.Store))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(catalog.Update))
	admin.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(catalog.Destroy))
	admin.Post("/products/{id}/images", "admin.products.images", ctx.Wrap(catalog.UploadImage))

	admin.Post("/trucks", "admin.trucks.intake", ctx.Wrap(trucks.Intake))
	admin.Get("/vin/{vin}", "admin.vin.decode", ctx.Wrap(trucks.Decode))

	admin.Get("/quotes", "admin.quotes.index", ctx.Wrap(quotes.Index))
	admin.Get("/quotes/{id}", "admin.quotes.show", ctx.Wrap(quotes.Show))
	admin.Patch("/quotes/{id}/status", "admin.quotes.status", ctx.Wrap(quotes.UpdateStatus))

	admin.Get("/customers", "admin.customers.index", ctx.Wrap(account.AdminIndex))

	admin.Get("/campaigns", "admin.campaigns.index", ctx.Wrap(campaigns.Index))
	admin.Post("/campaigns", "admin.campaigns.store", ctx.Wrap(campaigns.Store))
	admin.Get("/campaigns/{id}", "admin.campaigns.show", ctx.Wrap(campaigns.Show))
	admin.Put("/campaigns/{id}", "admin.campaigns.update", ctx.Wrap(campaigns.Update))
	admin.Put("/campaigns/{id}/products", "admin.campaigns.products", ctx.Wrap(campaigns.SetProducts))
	admin.Post("/campaigns/{id}/schedule", "admin.campaigns.schedule", ctx.Wrap(campaigns.Schedule))
	admin.Post("/campaigns/{id}/send", "admin.campaigns.send", ctx.Wrap(campaigns.Send))
	admin.Get("/campaigns/{id}/preview", "admin.campaigns.preview", ctx.Wrap(campaigns.Preview))
	admin.Get("/campaigns/{id}/analytics", "admin.campaigns.analytics", ctx.Wrap(campaigns.Analytics))

	admin.Post("/users", "admin.users.store", ctx.Wrap(adminAuth.CreateUser), rbac.HasRole(models.RoleAdmin))
}
