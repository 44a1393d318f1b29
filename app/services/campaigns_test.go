package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/mail"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
)

func newCampaigns(t *testing.T, db *gorm.DB, box *testkit.Mailbox) *CampaignService {
	t.Helper()
	storage.SetDefault(storage.NewLocalDisk(t.TempDir(), "https://cdn.rigparts.test"))
	return NewCampaignService(db).
		Via(box).
		WithComposer(NewComposer().WithBaseURL("https://shop.rigparts.test/"))
}

func draft(t *testing.T, svc *CampaignService, products ...models.Product) models.Campaign {
	t.Helper()
	c, err := svc.Create(bg, CampaignInput{Name: "Spring brakes", Subject: "Brake week", Headline: "Stop for less"})
	require.NoError(t, err)
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	c, err = svc.SetProducts(bg, c.ID, ids)
	require.NoError(t, err)
	return c
}

func TestCampaignSend_ReportsPerRecipient(t *testing.T) {
	db := newDB(t)
	box := testkit.NewMailbox().Reject("bob@example.com")
	svc := newCampaigns(t, db, box)

	seedCustomer(t, db, "Ann Lee", "ann@example.com", true)
	seedCustomer(t, db, "Bob Ray", "bob@example.com", true)
	seedCustomer(t, db, "Cy Dunn", "cy@example.com", true)
	seedCustomer(t, db, "Di Opt", "di@example.com", false)
	p := seedPart(t, db, "Brake chamber", "BC-30", "89.00", "84.55")
	c := draft(t, svc, p)

	report, err := svc.Send(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Recipients)
	assert.Equal(t, 2, report.Delivered)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "bob@example.com", report.Failed[0].Email)

	assert.Len(t, box.Sent(), 2)
	assert.Empty(t, box.To("di@example.com"))

	msgs := box.To("ann@example.com")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Brake week", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "Brake chamber")
	assert.Contains(t, msgs[0].HTML, "$89.00")
	assert.Contains(t, msgs[0].HTML, "e=ann%40example.com")
	assert.Contains(t, msgs[0].Headers["List-Unsubscribe"], "https://shop.rigparts.test/unsubscribe/")

	sent, err := svc.Get(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSent, sent.Status)
	assert.Equal(t, 3, sent.RecipientCount)
	require.NotNil(t, sent.SentAt)

	_, err = svc.Send(bg, c.ID)
	assert.ErrorIs(t, err, ErrCampaignSent)
	_, err = svc.Update(bg, c.ID, CampaignInput{Name: "x", Subject: "y"})
	assert.ErrorIs(t, err, ErrCampaignSent)
}

func TestCampaignSend_AllFailedLeavesCampaignUnsent(t *testing.T) {
	db := newDB(t)
	box := testkit.NewMailbox().Reject("ann@example.com")
	svc := newCampaigns(t, db, box)
	seedCustomer(t, db, "Ann Lee", "ann@example.com", true)
	c := draft(t, svc)

	report, err := svc.Send(bg, c.ID)
	assert.ErrorIs(t, err, ErrSendFailed)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Delivered)
	assert.Len(t, report.Failed, 1)

	got, err := svc.Get(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, got.Status)
	assert.Nil(t, got.SentAt)
}

func TestCampaignSend_OverlappingSendDeliversOnce(t *testing.T) {
	db := newDB(t)
	box := testkit.NewMailbox()
	inFlight := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	svc := newCampaigns(t, db, box).Via(mail.TransportFunc(func(ctx context.Context, msg mail.Message) error {
		once.Do(func() {
			close(inFlight)
			<-release
		})
		return box.Send(ctx, msg)
	}))
	seedCustomer(t, db, "Ann Lee", "ann@example.com", true)
	seedCustomer(t, db, "Bob Ray", "bob@example.com", true)
	c := draft(t, svc)

	first := make(chan error, 1)
	go func() {
		_, err := svc.Send(bg, c.ID)
		first <- err
	}()
	<-inFlight

	_, err := svc.Send(bg, c.ID)
	assert.ErrorIs(t, err, ErrCampaignSent)
	_, err = svc.Update(bg, c.ID, CampaignInput{Name: "x", Subject: "y"})
	assert.ErrorIs(t, err, ErrCampaignSent)

	close(release)
	require.NoError(t, <-first)

	assert.Len(t, box.To("ann@example.com"), 1)
	assert.Len(t, box.To("bob@example.com"), 1)
	got, err := svc.Get(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSent, got.Status)
}

func TestCampaignSend_ConcurrentSendsOnlyOneWins(t *testing.T) {
	db := newDB(t)
	box := testkit.NewMailbox()
	svc := newCampaigns(t, db, box)
	seedCustomer(t, db, "Ann Lee", "ann@example.com", true)
	seedCustomer(t, db, "Bob Ray", "bob@example.com", true)
	seedCustomer(t, db, "Cy Dunn", "cy@example.com", true)
	c := draft(t, svc)

	const senders = 6
	var wins, refused atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Send(bg, c.ID)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrCampaignSent):
				refused.Add(1)
			default:
				t.Errorf("unexpected send error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(senders-1), refused.Load())
	assert.Len(t, box.Sent(), 3)
}

func TestCampaignSend_ReleasesScheduledOnFailure(t *testing.T) {
	db := newDB(t)
	svc := newCampaigns(t, db, testkit.NewMailbox().Reject("ann@example.com"))
	seedCustomer(t, db, "Ann Lee", "ann@example.com", true)
	c := draft(t, svc)
	_, err := svc.Schedule(bg, c.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Send(bg, c.ID)
	assert.ErrorIs(t, err, ErrSendFailed)

	got, err := svc.Get(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignScheduled, got.Status)
}

func TestCampaignSend_NoRecipients(t *testing.T) {
	db := newDB(t)
	svc := newCampaigns(t, db, testkit.NewMailbox())
	seedCustomer(t, db, "Di Opt", "di@example.com", false)
	c := draft(t, svc)

	_, err := svc.Send(bg, c.ID)
	assert.ErrorIs(t, err, ErrNoRecipients)

	got, err := svc.Get(bg, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, got.Status)
}

func TestCampaignProducts_KeepOrder(t *testing.T) {
	db := newDB(t)
	svc := newCampaigns(t, db, testkit.NewMailbox())
	a := seedPart(t, db, "A", "A-1", "10.00", "9.50")
	b := seedPart(t, db, "B", "B-1", "10.00", "9.50")
	c := seedPart(t, db, "C", "C-1", "10.00", "9.50")

	camp := draft(t, svc, c, a, b, a)
	require.Len(t, camp.Products, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{
		camp.Products[0].ProductID, camp.Products[1].ProductID, camp.Products[2].ProductID,
	})
	assert.Equal(t, "C", camp.Products[0].Product.Name)

	_, err := svc.SetProducts(bg, camp.ID, []uint{a.ID, 999})
	assert.Contains(t, fields(t, err), "product_ids")
}

func TestCampaignSchedule(t *testing.T) {
	db := newDB(t)
	svc := newCampaigns(t, db, testkit.NewMailbox())
	c := draft(t, svc)

	_, err := svc.Schedule(bg, c.ID, time.Now().Add(-time.Hour))
	assert.Contains(t, fields(t, err), "scheduled_at")

	at := time.Now().Add(time.Hour)
	got, err := svc.Schedule(bg, c.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignScheduled, got.Status)

	due, err := svc.Due(bg, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = svc.Due(bg, at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, c.ID, due[0].ID)
}

func TestCampaignCreate_Validates(t *testing.T) {
	svc := newCampaigns(t, newDB(t), testkit.NewMailbox())
	_, err := svc.Create(bg, CampaignInput{})
	f := fields(t, err)
	assert.Contains(t, f, "name")
	assert.Contains(t, f, "subject")
}

func TestComposer_Links(t *testing.T) {
	storage.SetDefault(storage.NewLocalDisk(t.TempDir(), "https://cdn.rigparts.test"))
	c := NewComposer().WithBaseURL("https://shop.rigparts.test")

	assert.Equal(t, "https://shop.rigparts.test/t/open?c=7&e=a%2Bb%40example.com", c.OpenURL(7, "a+b@example.com"))
	assert.Equal(t, "https://shop.rigparts.test/t/click?c=7&e=a%40example.com&p=3", c.ClickURL(7, "a@example.com", 3))

	sku := "AF-9"
	p := models.Product{Name: "Air filter", SKU: &sku, RetailPrice: d("42.5"), Images: models.StringList{"products/3/a.jpg"}}
	p.ID = 3
	camp := models.Campaign{ID: 7, Subject: "Filters", Headline: "Breathe easy", Intro: "Stock up <now>",
		Products: []models.CampaignProduct{{CampaignID: 7, ProductID: 3, Position: 1, Product: p}}}
	html, err := c.Render(camp, models.Customer{Name: "Ann Lee", Email: "ann@example.com", UnsubscribeToken: "tok-1"})
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Ann,")
	assert.Contains(t, html, "Stock up &lt;now&gt;")
	assert.Contains(t, html, "$42.50")
	assert.Contains(t, html, "AF-9")
	assert.Contains(t, html, "https://cdn.rigparts.test/products/3/a.jpg")
	assert.Contains(t, html, "https://shop.rigparts.test/unsubscribe/tok-1")
	assert.Equal(t, 1, strings.Count(html, "/t/open?"))
	assert.Equal(t, 3, strings.Count(html, "/t/click?"))
}
