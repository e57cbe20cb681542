package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
)

func testReport(query string, score int) domain.TrustReport {
	return domain.TrustReport{
		ProductName:  query,
		TrustScore:   domain.TrustScore{Score: score, Confidence: "high", SourceCount: 3},
		GeneratedAt:  "2026-01-01T00:00:00Z",
		AssessmentID: "11111111-2222-3333-4444-555555555555",
	}
}

func TestSQLiteCacheSaveAndGet(t *testing.T) {
	c := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	defer c.Close()
	ctx := context.Background()

	require.True(t, c.Save(ctx, "Slack", testReport("Slack", 82)))

	t.Run("exact query", func(t *testing.T) {
		got, ok := c.Get(ctx, "Slack")
		require.True(t, ok)
		assert.Equal(t, 82, got.TrustScore.Score)
	})

	t.Run("case and whitespace variants hit the same entry", func(t *testing.T) {
		for _, q := range []string{"slack", "SLACK", "  Slack  ", "\tslack\n"} {
			got, ok := c.Get(ctx, q)
			require.True(t, ok, "query %q should hit", q)
			assert.Equal(t, 82, got.TrustScore.Score)
		}
	})

	t.Run("different query misses", func(t *testing.T) {
		_, ok := c.Get(ctx, "Zoom")
		assert.False(t, ok)
	})
}

func TestSQLiteCacheOverwrite(t *testing.T) {
	c := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	defer c.Close()
	ctx := context.Background()

	require.True(t, c.Save(ctx, "Notion", testReport("Notion", 70)))
	require.True(t, c.Save(ctx, "  NOTION  ", testReport("Notion", 55)))

	got, ok := c.Get(ctx, "notion")
	require.True(t, ok)
	assert.Equal(t, 55, got.TrustScore.Score, "a second save under an equivalent key must fully replace the entry")
}

func TestSQLiteCacheFailsOpen(t *testing.T) {
	t.Run("unopenable path", func(t *testing.T) {
		c := NewSQLiteCache(filepath.Join(t.TempDir(), "missing", "nested", "cache.db"))
		ctx := context.Background()

		assert.False(t, c.Save(ctx, "Slack", testReport("Slack", 82)))
		_, ok := c.Get(ctx, "Slack")
		assert.False(t, ok)
	})

	t.Run("empty path disables caching", func(t *testing.T) {
		c := NewSQLiteCache("")
		ctx := context.Background()

		assert.False(t, c.Save(ctx, "Slack", testReport("Slack", 82)))
		_, ok := c.Get(ctx, "Slack")
		assert.False(t, ok)
	})
}

func TestSQLiteCacheInitializesOnce(t *testing.T) {
	t.Run("failure is not retried", func(t *testing.T) {
		var attempts atomic.Int32
		c := NewSQLiteCache("irrelevant.db")
		c.open = func(string) (*gorm.DB, error) {
			attempts.Add(1)
			return nil, errors.New("disk unavailable")
		}
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			c.Save(ctx, "Slack", testReport("Slack", 82))
			c.Get(ctx, "Slack")
		}

		assert.Equal(t, int32(1), attempts.Load(), "the open attempt must happen exactly once per process")
	})

	t.Run("concurrent first use performs one attempt", func(t *testing.T) {
		var attempts atomic.Int32
		real := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
		c := NewSQLiteCache("counted.db")
		c.open = func(string) (*gorm.DB, error) {
			attempts.Add(1)
			return real.open(real.path)
		}
		defer c.Close()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Save(ctx, "Slack", testReport("Slack", 82))
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), attempts.Load())

		got, ok := c.Get(ctx, "slack")
		require.True(t, ok)
		assert.Equal(t, 82, got.TrustScore.Score)
	})
}

func TestSQLiteCacheCorruptRowIsAMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c := NewSQLiteCache(path)
	defer c.Close()
	ctx := context.Background()

	require.True(t, c.Save(ctx, "Slack", testReport("Slack", 82)))

	db, ok := c.handle()
	require.True(t, ok)
	require.NoError(t, db.Model(&ReportModel{}).
		Where("query_key = ?", "slack").
		Update("report", "{not-json").Error)

	_, ok = c.Get(ctx, "Slack")
	assert.False(t, ok)
}
