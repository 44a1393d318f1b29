package controllers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/bind"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
)

type TruckController struct {
	trucks  *services.TruckService
	decoder *services.VINDecoder
}

func NewTruckController(db *gorm.DB, decoder *services.VINDecoder) *TruckController {
	return &TruckController{trucks: services.NewTruckService(db, decoder), decoder: decoder}
}

// Decode looks a VIN up without saving anything.
func (tc *TruckController) Decode(c *ctx.Context) {
	info, err := tc.decoder.Decode(c.Context(), strings.ToUpper(c.Param("vin")))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(info)
}

// Intake lists a used truck, filling blank details from its VIN.
func (tc *TruckController) Intake(c *ctx.Context) {
	// The name may be derived from the VIN, so the service validates.
	var in services.ProductInput
	if _, err := bind.JSON(c.R, &in); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	p, err := tc.trucks.Intake(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resources.AdminProductResource{}.ToArray(p))
}
