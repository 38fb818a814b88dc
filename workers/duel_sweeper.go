// workers/duel_sweeper.go
package workers

import (
	"context"
	"log"
	"time"

	"hackathon-event-system/models"

	"gorm.io/gorm"
)

// PollStaleDuels periodically deletes abandoned matches: unfinished duels
// whose last mutation is older than ttl. A pending proposal would otherwise
// sit in the queue forever — this is the administrative "abandoned by
// deletion" path, not part of the match lifecycle itself.
func PollStaleDuels(ctx context.Context, db *gorm.DB, pollInterval, ttl time.Duration) {
	log.Println("Starting stale duel sweeper...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stale duel sweeper stopped.")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-ttl)
			res := db.Where("has_finished = ? AND updated_at < ?", false, cutoff).
				Delete(&models.Duel{})
			if res.Error != nil {
				log.Printf("❌ Error sweeping stale duels: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				log.Printf("🧹 Swept %d stale duel(s) older than %s", res.RowsAffected, ttl)
			}
		}
	}
}
