package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

type QuoteController struct {
	quotes *services.QuoteService
}

func NewQuoteController(db *gorm.DB) *QuoteController {
	return &QuoteController{quotes: services.NewQuoteService(db)}
}

func (qc *QuoteController) Store(c *ctx.Context) {
	var in services.QuoteInput
	if !c.BindJSON(&in) {
		return
	}
	q, err := qc.quotes.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resources.QuoteResource{}.ToArray(*q))
}

func (qc *QuoteController) Index(c *ctx.Context) {
	qs, pg, err := qc.quotes.List(c.Context(), c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.QuoteResource{}, qs), pg)
}

func (qc *QuoteController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	q, err := qc.quotes.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.QuoteResource{}.ToArray(q))
}

func (qc *QuoteController) UpdateStatus(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !c.BindJSON(&req) {
		return
	}
	q, err := qc.quotes.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.QuoteResource{}.ToArray(q))
}
