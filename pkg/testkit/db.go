// Package testkit holds the shared fixtures for package tests: an isolated
// in-memory database, an HTTP request helper that decodes the response
// envelope, a stub for outgoing HTTP calls and a capturing mail transport.
package testkit

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/pkg/database"
)

var dbSeq atomic.Int64

// DB opens a private in-memory sqlite database, migrates models into it and
// closes it when the test ends.
func DB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testkit_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err, "testkit: open sqlite")

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "testkit: migrate")
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
