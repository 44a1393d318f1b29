package orm

import (
	"context"
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/cache"
	"github.com/shashiranjanraj/rigparts/pkg/database"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination is the metadata block returned next to a page of results.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Query is an immutable chain over *gorm.DB; every call returns a new Query.
type Query struct {
	db *gorm.DB
}

// DB starts a query on the process-wide connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// On starts a query on an explicit connection or transaction.
func On(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

// WhereIf applies the condition only when ok is true, for optional filters.
func (q *Query) WhereIf(ok bool, query interface{}, args ...interface{}) *Query {
	if !ok {
		return q
	}
	return q.Where(query, args...)
}

func (q *Query) Joins(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Joins(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// Paginate counts the full result set, then loads page into dest.
// page and limit are clamped to sane bounds.
func (q *Query) Paginate(page, limit int, dest interface{}) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var total int64
	if err := q.db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := q.db.Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	last := int((total + int64(limit) - 1) / int64(limit))
	if last < 1 {
		last = 1
	}

	return Pagination{Page: page, Limit: limit, Total: total, LastPage: last}, nil
}

// Cache serves dest from Redis when present, else loads and stores it for ttl.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(ctx, key, dest) {
		return nil
	}

	if err := q.db.WithContext(ctx).Find(dest).Error; err != nil {
		return err
	}

	_ = cache.Set(ctx, key, dest, ttl)
	return nil
}

// Gorm exposes the underlying handle for the rare call the chain lacks.
func (q *Query) Gorm() *gorm.DB {
	return q.db
}
