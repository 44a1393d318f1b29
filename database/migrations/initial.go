package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/migration"
	"github.com/shashiranjanraj/rigparts/pkg/queue"
)

func init() {
	migration.Register("2026_01_10_000001_create_users_table", tables(&models.User{}))
	migration.Register("2026_01_10_000002_create_customers_table", tables(&models.Customer{}))
	migration.Register("2026_01_10_000003_create_catalog_tables", tables(&models.Category{}, &models.Product{}))
	migration.Register("2026_01_10_000004_create_orders_tables",
		tables(&models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{}))
	migration.Register("2026_01_10_000005_create_quote_requests_table", tables(&models.QuoteRequest{}))
	migration.Register("2026_01_10_000006_create_campaign_tables",
		tables(&models.Campaign{}, &models.CampaignProduct{}, &models.TrackingEvent{}))
	migration.Register("2026_01_10_000007_create_failed_jobs_table", tables(&queue.FailedJobRecord{}))
}

// createTables migrates models on Up and drops them in reverse on Down.
type createTables struct {
	models []any
}

func tables(models ...any) *createTables { return &createTables{models: models} }

func (m *createTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.models...)
}

func (m *createTables) Down(db *gorm.DB) error {
	for i := len(m.models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(m.models[i]); err != nil {
			return err
		}
	}
	return nil
}
