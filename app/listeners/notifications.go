package listeners

import (
	"fmt"
	"html"
	"strings"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/notification"
)

// OrderPlaced tells staff a new order needs handling.
type OrderPlaced struct {
	Order models.Order
}

func (OrderPlaced) Via() []string { return []string{notification.Mail, notification.Slack} }

func (n OrderPlaced) ToMail() notification.MailData {
	o := n.Order
	var rows strings.Builder
	for _, it := range o.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%d</td><td>$%s</td></tr>",
			html.EscapeString(it.ProductName), html.EscapeString(it.SKU), it.Quantity, it.Subtotal.StringFixed(2))
	}

	body := fmt.Sprintf(`<h2>Order #%d</h2>
<p>%s &lt;%s&gt; %s</p>
<p>Delivery: %s</p>
<table>%s</table>
<p>Subtotal $%s, HST $%s, shipping $%s, <strong>total $%s</strong></p>
<p><a href="%s/admin/orders/%d">Open in admin</a></p>`,
		o.ID,
		html.EscapeString(o.ContactName), html.EscapeString(o.ContactEmail), html.EscapeString(o.ContactPhone),
		html.EscapeString(o.DeliveryMethod),
		rows.String(),
		o.Subtotal.StringFixed(2), o.Tax.StringFixed(2), o.Shipping.StringFixed(2), o.Total.StringFixed(2),
		config.AppURL(), o.ID)

	return notification.MailData{
		Subject: fmt.Sprintf("New order #%d ($%s)", o.ID, o.Total.StringFixed(2)),
		Body:    body,
	}
}

func (n OrderPlaced) ToSlack() notification.SlackData {
	o := n.Order
	return notification.SlackData{
		Text: fmt.Sprintf("New order #%d from %s", o.ID, o.ContactName),
		Attachments: []notification.SlackAttachment{{
			Color:  "good",
			Title:  fmt.Sprintf("$%s, %s, %d item(s)", o.Total.StringFixed(2), o.DeliveryMethod, len(o.Items)),
			Footer: o.ContactEmail,
		}},
	}
}

// QuoteRequested tells staff a shopper is waiting on a price.
type QuoteRequested struct {
	Quote models.QuoteRequest
}

func (QuoteRequested) Via() []string { return []string{notification.Mail, notification.Slack} }

func (n QuoteRequested) ToMail() notification.MailData {
	q := n.Quote
	what := q.PartDescription
	if q.Product != nil {
		what = q.Product.Name + " (" + q.Product.Code() + ")"
	}
	body := fmt.Sprintf(`<h2>Quote request #%d</h2>
<p>%s &lt;%s&gt; %s %s</p>
<p>%s x %d</p>
<p>%s</p>`,
		q.ID,
		html.EscapeString(q.Name), html.EscapeString(q.Email), html.EscapeString(q.Phone), html.EscapeString(q.Company),
		html.EscapeString(what), q.Quantity,
		html.EscapeString(q.Message))

	return notification.MailData{
		Subject: fmt.Sprintf("Quote request #%d from %s", q.ID, q.Name),
		Body:    body,
	}
}

func (n QuoteRequested) ToSlack() notification.SlackData {
	q := n.Quote
	return notification.SlackData{
		Text: fmt.Sprintf("Quote request #%d (%s) from %s", q.ID, q.Source, q.Name),
		Attachments: []notification.SlackAttachment{{
			Color: "warning",
			Text:  q.PartDescription,
		}},
	}
}
