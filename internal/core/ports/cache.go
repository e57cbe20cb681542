package ports

import (
	"context"

	"github.com/lcalzada-xor/trustrecon/internal/core/domain"
)

// ReportCache persists completed trust reports keyed by normalized
// query string. Implementations fail open: when the backing store is
// unavailable, Save reports false and Get reports a miss, never an
// error.
type ReportCache interface {
	// Save writes or fully overwrites the report for a query.
	Save(ctx context.Context, query string, report domain.TrustReport) bool

	// Get returns the cached report for a query, or ok=false on miss.
	Get(ctx context.Context, query string) (report *domain.TrustReport, ok bool)

	Close() error
}
