package controllers

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
)

// pixel is a transparent 1x1 GIF.
var pixel, _ = base64.StdEncoding.DecodeString("R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// TrackingController records campaign engagement. Both endpoints always
// answer the mail client normally; a bad or unrecordable hit is only logged.
type TrackingController struct {
	tracking  *services.TrackingService
	customers *services.CustomerService
}

func NewTrackingController(db *gorm.DB) *TrackingController {
	return &TrackingController{
		tracking:  services.NewTrackingService(db),
		customers: services.NewCustomerService(db),
	}
}

func queryUint(c *ctx.Context, key string) uint {
	n, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// Open serves the tracking pixel: GET /t/open?c={campaign}&e={email}.
func (tc *TrackingController) Open(c *ctx.Context) {
	if err := tc.tracking.RecordOpen(c.Context(), queryUint(c, "c"), c.Query("e")); err != nil {
		c.Log().Warn("tracking: open not recorded", "error", err)
	}
	c.SetHeader("Cache-Control", "no-store, no-cache, must-revalidate, private")
	c.Data(http.StatusOK, "image/gif", pixel)
}

// Click records a product click and forwards to the product page:
// GET /t/click?c={campaign}&e={email}&p={product}.
func (tc *TrackingController) Click(c *ctx.Context) {
	productID := queryUint(c, "p")
	if err := tc.tracking.RecordClick(c.Context(), queryUint(c, "c"), c.Query("e"), productID); err != nil {
		c.Log().Warn("tracking: click not recorded", "error", err)
	}

	dest := config.AppURL() + "/"
	if productID != 0 {
		dest = fmt.Sprintf("%s/products/%d", config.AppURL(), productID)
	}
	c.Redirect(http.StatusFound, dest)
}

var unsubscribePage = template.Must(template.New("unsubscribe").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,sans-serif;max-width:480px;margin:48px auto;color:#222">
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
<p><a href="{{.Home}}">Back to the store</a></p>
</body></html>`))

// Unsubscribe opts the customer behind the email link out of campaigns.
func (tc *TrackingController) Unsubscribe(c *ctx.Context) {
	view := map[string]string{"Home": config.AppURL() + "/"}
	status := http.StatusOK

	cust, err := tc.customers.Unsubscribe(c.Context(), c.Param("token"))
	switch {
	case err == nil:
		view["Title"] = "You have been unsubscribed"
		view["Body"] = cust.Email + " will no longer receive marketing email from us."
	case isNotFound(err):
		status = http.StatusNotFound
		view["Title"] = "Link not recognised"
		view["Body"] = "This unsubscribe link is invalid or has already been replaced."
	default:
		c.Log().Error("unsubscribe failed", "error", err)
		status = http.StatusInternalServerError
		view["Title"] = "Something went wrong"
		view["Body"] = "Please try the link again in a few minutes."
	}

	c.SetHeader("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := unsubscribePage.Execute(c.W, view); err != nil {
		c.Log().Error("unsubscribe: render", "error", err)
	}
}

// UnsubscribeJSON is the API form of Unsubscribe for storefronts that render
// their own confirmation page.
func (tc *TrackingController) UnsubscribeJSON(c *ctx.Context) {
	cust, err := tc.customers.Unsubscribe(c.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]any{"email": cust.Email, "subscribed": cust.Subscribed})
}
