package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// TruckService lists used trucks for sale.
type TruckService struct {
	catalog *CatalogService
	decoder *VINDecoder
}

func NewTruckService(db *gorm.DB, decoder *VINDecoder) *TruckService {
	return &TruckService{catalog: NewCatalogService(db), decoder: decoder}
}

// Intake creates a truck listing. Blank vehicle fields are filled from the
// VIN decoder when it answers; a failed decode is logged and the listing
// is created with what the admin entered.
func (s *TruckService) Intake(ctx context.Context, in ProductInput) (models.Product, error) {
	in.Kind = models.KindTruck
	in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	if in.VIN == "" {
		return models.Product{}, validate.Field("vin", "The vin field is required.")
	}

	if s.decoder != nil && validate.VIN(in.VIN) {
		info, err := s.decoder.Decode(ctx, in.VIN)
		if err != nil {
			logger.WithCtx(ctx).Warn("trucks: vin decode failed", "vin", in.VIN, "error", err)
		} else {
			in = enrich(in, info)
		}
	}

	if strings.TrimSpace(in.Name) == "" {
		in.Name = joinNonEmpty(" ", yearString(in.Year), in.Make, in.Model)
	}

	p, err := s.catalog.SaveProduct(ctx, 0, in)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func enrich(in ProductInput, info VehicleInfo) ProductInput {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&in.Make, info.Make)
	fill(&in.Model, info.Model)
	fill(&in.Engine, info.Engine)
	fill(&in.Transmission, info.Transmission)
	fill(&in.GVW, info.GVW)
	if in.Year == 0 {
		in.Year = info.Year
	}
	return in
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprint(y)
}
