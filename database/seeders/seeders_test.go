package seeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
)

func TestRunAll_Idempotent(t *testing.T) {
	db := testkit.DB(t, models.All()...)

	require.NoError(t, RunAll(db))
	require.NoError(t, RunAll(db))

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.Equal(t, int64(len(products)), n)
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Equal(t, int64(len(categories)), n)
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	var p models.Product
	require.NoError(t, db.Where("sku = ?", "BC-3030").First(&p).Error)
	assert.True(t, p.CustomerPrice.LessThan(p.RetailPrice))
	require.NotNil(t, p.CategoryID)
}
