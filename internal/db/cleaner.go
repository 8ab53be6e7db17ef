package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartClosedApplicationCleaner removes approved/declined applications
// past the retention window, on the given interval.
func StartClosedApplicationCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM applications
                     WHERE status IN ('approved', 'declined')
                       AND submitted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean closed applications", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned closed applications", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
