package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
)

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

// timestamps guards array columns against NULL: they are NOT NULL DEFAULT '{}'.
func timestamps(ts []time.Time) []time.Time {
	if ts == nil {
		return []time.Time{}
	}
	return ts
}

