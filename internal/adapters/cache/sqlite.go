// Package cache provides the content-addressed report cache backed by
// SQLite. The backing store is initialized lazily, exactly once per
// process, and the cache fails open: when the store cannot be opened,
// saves report false and lookups report a miss, but nothing raises.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
	"github.com/lcalzada-xor/trustrecon/internal/telemetry"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// ReportModel is the GORM model for cached report envelopes.
type ReportModel struct {
	QueryKey string `gorm:"primaryKey;column:query_key"`
	Query    string
	Report   string // JSON-encoded TrustReport
	CachedAt string
}

// TableName defines the backing table name.
func (ReportModel) TableName() string {
	return "report_cache"
}

type initState int

const (
	stateUninitialized initState = iota
	stateReady
	stateUnavailable
)

// SQLiteCache implements ports.ReportCache over a lazily-opened SQLite
// database.
type SQLiteCache struct {
	path string

	mu    sync.Mutex
	state initState
	db    *gorm.DB

	// open is swappable in tests to observe initialization attempts.
	open func(path string) (*gorm.DB, error)
}

// NewSQLiteCache creates a cache over the database at path. The store
// is not opened until the first Get or Save. An empty path disables
// caching.
func NewSQLiteCache(path string) *SQLiteCache {
	return &SQLiteCache{path: path, open: openStore}
}

func openStore(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ReportModel{}); err != nil {
		return nil, err
	}
	return db, nil
}

// handle resolves the backing store, performing the single lazy
// initialization attempt on first use. Callers arriving while another
// goroutine initializes block here until the outcome is known; the
// attempt is never repeated regardless of outcome.
func (c *SQLiteCache) handle() (*gorm.DB, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateReady:
		return c.db, true
	case stateUnavailable:
		return nil, false
	}

	c.state = stateUnavailable
	if c.path == "" {
		slog.Warn("Report cache disabled: no cache path configured")
		return nil, false
	}
	db, err := c.open(c.path)
	if err != nil {
		slog.Error("Report cache unavailable", "error", err, "path", c.path)
		return nil, false
	}
	c.db = db
	c.state = stateReady
	return db, true
}

// Save writes or fully overwrites the cached report for a query under
// its normalized key. A failed save is logged and reported as false;
// it never fails the assessment that produced the report.
func (c *SQLiteCache) Save(ctx context.Context, query string, report domain.TrustReport) bool {
	db, ok := c.handle()
	if !ok {
		telemetry.CacheOperations.WithLabelValues("save", "unavailable").Inc()
		return false
	}

	payload, err := json.Marshal(report)
	if err != nil {
		slog.Error("Failed to encode report for cache", "error", err, "query", query)
		telemetry.CacheOperations.WithLabelValues("save", "failed").Inc()
		return false
	}

	model := ReportModel{
		QueryKey: domain.NormalizeQueryKey(query),
		Query:    query,
		Report:   string(payload),
		CachedAt: time.Now().UTC().Format(time.RFC3339),
	}

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&model).Error
	if err != nil {
		slog.Error("Failed to save report to cache", "error", err, "query", query)
		telemetry.CacheOperations.WithLabelValues("save", "failed").Inc()
		return false
	}

	slog.Info("Cached trust report", "query", query)
	telemetry.CacheOperations.WithLabelValues("save", "ok").Inc()
	return true
}

// Get returns the cached report for a query, normalizing the key the
// same way as Save. A miss, an unavailable store and a corrupt row all
// come back as ok=false.
func (c *SQLiteCache) Get(ctx context.Context, query string) (*domain.TrustReport, bool) {
	db, ok := c.handle()
	if !ok {
		telemetry.CacheOperations.WithLabelValues("get", "unavailable").Inc()
		return nil, false
	}

	var model ReportModel
	err := db.WithContext(ctx).First(&model, "query_key = ?", domain.NormalizeQueryKey(query)).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Failed to read report cache", "error", err, "query", query)
		}
		telemetry.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	var report domain.TrustReport
	if err := json.Unmarshal([]byte(model.Report), &report); err != nil {
		slog.Error("Corrupt cached report", "error", err, "query", query)
		telemetry.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	telemetry.CacheOperations.WithLabelValues("get", "hit").Inc()
	return &report, true
}

// Close releases the backing store if it was opened.
func (c *SQLiteCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.ReportCache = (*SQLiteCache)(nil)
