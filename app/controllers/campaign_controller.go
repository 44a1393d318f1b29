package controllers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/jobs"
	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/queue"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

type CampaignController struct {
	campaigns *services.CampaignService
	analytics *services.AnalyticsService
	composer  *services.Composer
}

func NewCampaignController(db *gorm.DB, campaigns *services.CampaignService) *CampaignController {
	return &CampaignController{
		campaigns: campaigns,
		analytics: services.NewAnalyticsService(db),
		composer:  services.NewComposer(),
	}
}

func (cc *CampaignController) Index(c *ctx.Context) {
	cs, pg, err := cc.campaigns.List(c.Context(), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.CampaignResource{}, cs), pg)
}

func (cc *CampaignController) Store(c *ctx.Context) {
	var in services.CampaignInput
	if !c.BindJSON(&in) {
		return
	}
	camp, err := cc.campaigns.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resources.CampaignResource{}.ToArray(camp))
}

func (cc *CampaignController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	camp, err := cc.campaigns.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CampaignResource{}.ToArray(camp))
}

func (cc *CampaignController) Update(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.CampaignInput
	if !c.BindJSON(&in) {
		return
	}
	camp, err := cc.campaigns.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CampaignResource{}.ToArray(camp))
}

type campaignProductsRequest struct {
	ProductIDs []uint `json:"product_ids"`
}

// SetProducts replaces the featured products; order is kept.
func (cc *CampaignController) SetProducts(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req campaignProductsRequest
	if !c.BindJSON(&req) {
		return
	}
	camp, err := cc.campaigns.SetProducts(c.Context(), id, req.ProductIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CampaignResource{}.ToArray(camp))
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (cc *CampaignController) Schedule(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req scheduleRequest
	if !c.BindJSON(&req) {
		return
	}
	camp, err := cc.campaigns.Schedule(c.Context(), id, req.ScheduledAt)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CampaignResource{}.ToArray(camp))
}

// Send queues the campaign for delivery and returns at once. With ?wait=1
// it sends inline and returns the per-recipient report.
func (cc *CampaignController) Send(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	camp, err := cc.campaigns.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if camp.Locked() {
		fail(c, services.ErrCampaignSent)
		return
	}

	if c.Query("wait") == "1" {
		report, err := cc.campaigns.Send(c.Context(), id)
		if report != nil && err != nil {
			c.JSON(http.StatusBadGateway, map[string]any{
				"status":  http.StatusBadGateway,
				"message": "No email could be delivered.",
				"data":    report,
			})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.Success(report)
		return
	}

	job := jobs.NewSendCampaign(cc.campaigns)
	job.CampaignID = id
	if err := queue.Dispatch(c.Context(), job); err != nil {
		fail(c, err)
		return
	}
	c.Accepted("Campaign queued for sending.")
}

// Preview renders the email as the signed-in staff member would get it.
func (cc *CampaignController) Preview(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	camp, err := cc.campaigns.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	claims, _ := c.Claims()
	to := models.Customer{Name: "Preview", UnsubscribeToken: "preview"}
	if claims != nil {
		to.Email = claims.Email
	}
	body, err := cc.composer.Render(camp, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func (cc *CampaignController) Analytics(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := cc.analytics.ForCampaign(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(report)
}
