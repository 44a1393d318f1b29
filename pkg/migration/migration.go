// Package migration runs and tracks schema migrations.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("2026_01_10_000001_create_products_table", &CreateProductsTable{})
//	}
//
// and are driven from the CLI:
//
//	rigparts migrate             // run all pending
//	rigparts migrate:rollback    // roll back the last batch
//	rigparts migrate:status
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "migrations" }

// Entry is a named migration.
type Entry struct {
	Name      string
	Migration Migration
}

var registry []Entry

// Register adds a migration to the global registry. Names are timestamp
// prefixed so lexical order is chronological order.
func Register(name string, m Migration) {
	registry = append(registry, Entry{Name: name, Migration: m})
}

// Status is one row of Runner.Status.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations.
type Runner struct {
	db      *gorm.DB
	entries []Entry
	out     io.Writer
}

// New creates a Runner over the global registry.
func New(db *gorm.DB) *Runner { return NewWith(db, registry) }

// NewWith creates a Runner over an explicit migration list.
func NewWith(db *gorm.DB, entries []Entry) *Runner {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Runner{db: db, entries: sorted, out: io.Discard}
}

// Output sets where progress lines are printed.
func (r *Runner) Output(w io.Writer) *Runner {
	r.out = w
	return r
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]record, error) {
	var rows []record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration in a single new batch. Each migration
// and its history row commit together.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return 0, err
	}

	var pending []Entry
	for _, e := range r.entries {
		if _, ok := done[e.Name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return 0, nil
	}

	batch := 1
	for _, rec := range done {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	for _, e := range pending {
		fmt.Fprintf(r.out, "  Migrating: %s\n", e.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := e.Migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: e.Name, Batch: batch}).Error
		})
		if err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", e.Name, err)
		}
		fmt.Fprintf(r.out, "  Migrated:  %s\n", e.Name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return len(pending), nil
}

// Rollback reverses the most recent batch in reverse order.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}

	var last record
	err := r.db.WithContext(ctx).Order("batch desc").Limit(1).Find(&last).Error
	if err != nil {
		return 0, fmt.Errorf("migration: find last batch: %w", err)
	}
	if last.ID == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.WithContext(ctx).Where("batch = ?", last.Batch).Order("id desc").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: load batch %d: %w", last.Batch, err)
	}

	byName := make(map[string]Migration, len(r.entries))
	for _, e := range r.entries {
		byName[e.Name] = e.Migration
	}

	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return 0, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  Rolling back: %s\n", rec.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, rec.ID).Error
		})
		if err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
	}

	logger.Info("migration: rolled back", "batch", last.Batch, "count", len(rows))
	return len(rows), nil
}

// Status reports every known migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		rec, ok := done[e.Name]
		out = append(out, Status{Name: e.Name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

// PrintStatus writes a status table to w.
func PrintStatus(w io.Writer, rows []Status) {
	fmt.Fprintf(w, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, s := range rows {
		if s.Ran {
			fmt.Fprintf(w, "%-60s  %-8s  %d\n", s.Name, "Ran", s.Batch)
		} else {
			fmt.Fprintf(w, "%-60s  %-8s  -\n", s.Name, "Pending")
		}
	}
}
