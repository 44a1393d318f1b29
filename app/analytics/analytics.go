// Package analytics turns raw campaign tracking rows into engagement
// metrics. Events are never deduplicated on write; "unique" counts are
// distinct recipient emails computed here.
package analytics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/collection"
)

// TopProductLimit caps Report.TopProducts.
const TopProductLimit = 5

// ProductClicks is a product's share of a campaign's clicks.
type ProductClicks struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Clicks    int     `json:"clicks"`
	Share     float64 `json:"share"`
}

// Report is the aggregated engagement of one campaign. Rates are
// percentages rounded to one decimal place.
type Report struct {
	CampaignID       uint            `json:"campaign_id"`
	Recipients       int             `json:"recipients"`
	TotalOpens       int             `json:"total_opens"`
	UniqueOpens      int             `json:"unique_opens"`
	TotalClicks      int             `json:"total_clicks"`
	UniqueClicks     int             `json:"unique_clicks"`
	OpenRate         float64         `json:"open_rate"`
	ClickRate        float64         `json:"click_rate"`
	ClickThroughRate float64         `json:"click_through_rate"`
	TopProducts      []ProductClicks `json:"top_products"`

	// ClicksWithoutOpen counts recipients who clicked but never triggered
	// the open pixel (image blocking). They still count as unique clickers,
	// so ClickThroughRate may exceed 100.
	ClicksWithoutOpen int `json:"clicks_without_open"`
}

// Aggregate computes the report for recipients and the campaign's events.
func Aggregate(recipients int, events []models.TrackingEvent) Report {
	opens := collection.Filter(events, func(e models.TrackingEvent) bool { return e.EventType == models.EventOpen })
	clicks := collection.Filter(events, func(e models.TrackingEvent) bool { return e.EventType == models.EventClick })

	openers := distinctEmails(opens)
	clickers := distinctEmails(clicks)

	without := 0
	for email := range clickers {
		if _, ok := openers[email]; !ok {
			without++
		}
	}

	r := Report{
		Recipients:        recipients,
		TotalOpens:        len(opens),
		UniqueOpens:       len(openers),
		TotalClicks:       len(clicks),
		UniqueClicks:      len(clickers),
		ClicksWithoutOpen: without,
		TopProducts:       topProducts(clicks, len(clicks)),
	}
	r.OpenRate = percent(r.UniqueOpens, recipients)
	r.ClickRate = percent(r.UniqueClicks, recipients)
	r.ClickThroughRate = percent(r.UniqueClicks, r.UniqueOpens)
	return r
}

// Empty is the report for a campaign with no data.
func Empty(campaignID uint) Report {
	return Report{CampaignID: campaignID, TopProducts: []ProductClicks{}}
}

func topProducts(clicks []models.TrackingEvent, total int) []ProductClicks {
	withProduct := collection.Filter(clicks, func(e models.TrackingEvent) bool { return e.ProductID != nil })
	counts := collection.CountBy(withProduct, func(e models.TrackingEvent) uint { return *e.ProductID })
	collection.SortBy(counts, func(a, b collection.Count[uint]) bool { return a.Count > b.Count })

	return collection.Map(collection.Take(counts, TopProductLimit), func(c collection.Count[uint]) ProductClicks {
		return ProductClicks{ProductID: c.Key, Clicks: c.Count, Share: percent(c.Count, total)}
	})
}

// distinctEmails compares addresses case-insensitively.
func distinctEmails(events []models.TrackingEvent) map[string]struct{} {
	out := make(map[string]struct{}, len(events))
	for _, e := range events {
		out[strings.ToLower(strings.TrimSpace(e.CustomerEmail))] = struct{}{}
	}
	return out
}

// percent is n/of*100 rounded to one decimal, or 0 when of is 0.
func percent(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(n)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(of)), 1).
		InexactFloat64()
}
