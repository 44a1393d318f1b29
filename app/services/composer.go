package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
)

// Composer renders campaign emails. Each recipient gets its own copy
// because the tracking and unsubscribe links carry their address.
type Composer struct {
	baseURL string
	tmpl    *template.Template
}

func NewComposer() *Composer {
	return &Composer{baseURL: config.AppURL(), tmpl: campaignTemplate}
}

// WithBaseURL points generated links at origin instead of APP_URL.
func (c *Composer) WithBaseURL(origin string) *Composer {
	c.baseURL = strings.TrimRight(origin, "/")
	return c
}

type productCard struct {
	Name     string
	Code     string
	Price    string
	ImageURL string
	Link     string
}

type campaignView struct {
	Subject        string
	Headline       string
	Intro          string
	Greeting       string
	Products       []productCard
	PixelURL       string
	UnsubscribeURL string
}

// Render returns the HTML body of campaign c for customer to.
func (c *Composer) Render(campaign models.Campaign, to models.Customer) (string, error) {
	view := campaignView{
		Subject:        campaign.Subject,
		Headline:       campaign.Headline,
		Intro:          campaign.Intro,
		Greeting:       greeting(to.Name),
		PixelURL:       c.OpenURL(campaign.ID, to.Email),
		UnsubscribeURL: c.baseURL + "/unsubscribe/" + url.PathEscape(to.UnsubscribeToken),
	}
	for _, cp := range campaign.Products {
		p := cp.Product
		view.Products = append(view.Products, productCard{
			Name:     p.Name,
			Code:     p.Code(),
			Price:    "$" + p.RetailPrice.StringFixed(2),
			ImageURL: c.imageURL(p.Image()),
			Link:     c.ClickURL(campaign.ID, to.Email, p.ID),
		})
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("composer: render campaign %d: %w", campaign.ID, err)
	}
	return buf.String(), nil
}

// OpenURL is the tracking pixel address.
func (c *Composer) OpenURL(campaignID uint, email string) string {
	q := url.Values{}
	q.Set("c", fmt.Sprint(campaignID))
	q.Set("e", email)
	return c.baseURL + "/t/open?" + q.Encode()
}

// ClickURL is the tracked link to a product page.
func (c *Composer) ClickURL(campaignID uint, email string, productID uint) string {
	q := url.Values{}
	q.Set("c", fmt.Sprint(campaignID))
	q.Set("e", email)
	q.Set("p", fmt.Sprint(productID))
	return c.baseURL + "/t/click?" + q.Encode()
}

func (c *Composer) imageURL(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	return storage.URL(path)
}

func greeting(name string) string {
	if first, _, _ := strings.Cut(strings.TrimSpace(name), " "); first != "" {
		return "Hi " + first + ","
	}
	return "Hello,"
}

var campaignTemplate = template.Must(template.New("campaign").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;background:#f4f4f4;font-family:Arial,sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table width="600" cellpadding="16" cellspacing="0" style="background:#ffffff;">
<tr><td>
<h1 style="margin:0 0 12px;">{{.Headline}}</h1>
<p>{{.Greeting}}</p>
{{if .Intro}}<p>{{.Intro}}</p>{{end}}
</td></tr>
{{range .Products}}
<tr><td style="border-top:1px solid #e5e5e5;">
{{if .ImageURL}}<a href="{{.Link}}"><img src="{{.ImageURL}}" alt="{{.Name}}" width="180" style="display:block;"></a>{{end}}
<h3 style="margin:8px 0 4px;"><a href="{{.Link}}">{{.Name}}</a></h3>
{{if .Code}}<p style="margin:0;color:#777;">{{.Code}}</p>{{end}}
<p style="margin:4px 0;font-weight:bold;">{{.Price}}</p>
<a href="{{.Link}}">View details</a>
</td></tr>
{{end}}
<tr><td style="font-size:12px;color:#999;">
<a href="{{.UnsubscribeURL}}">Unsubscribe</a> from these emails.
</td></tr>
</table>
</td></tr></table>
<img src="{{.PixelURL}}" width="1" height="1" alt="" style="display:none;">
</body>
</html>
`))
