// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"leftover-food-system/models"

	"github.com/go-co-op/gocron/v2"
)

// DigestReport is one run of the lifecycle digest.
type DigestReport struct {
	Counts map[models.FoodStatus]int64
	Stale  []uint
}

// RunDigest counts listings per status and finds available listings older than
// staleAfter. It only reads.
func (s *FoodService) RunDigest(ctx context.Context, staleAfter time.Duration) (*DigestReport, error) {
	report := &DigestReport{Counts: map[models.FoodStatus]int64{
		models.StatusAvailable: 0,
		models.StatusClaimed:   0,
		models.StatusInTransit: 0,
		models.StatusCompleted: 0,
	}}

	var rows []struct {
		Status models.FoodStatus
		Total  int64
	}
	if err := s.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, storeError("count listings", err)
	}
	for _, r := range rows {
		report.Counts[r.Status] = r.Total
	}

	cutoff := s.now().Add(-staleAfter)
	if err := s.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Where("status = ? AND created_at < ?", string(models.StatusAvailable), cutoff).
		Order("created_at ASC").
		Pluck("id", &report.Stale).Error; err != nil {
		return nil, storeError("find stale listings", err)
	}

	for status, total := range report.Counts {
		listingsByStatus.WithLabelValues(string(status)).Set(float64(total))
	}
	staleListings.Set(float64(len(report.Stale)))
	return report, nil
}

// StartDigestScheduler runs RunDigest every interval on the service clock.
// The caller owns the returned scheduler and must Shutdown it.
func (s *FoodService) StartDigestScheduler(interval, staleAfter time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.Clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			report, err := s.RunDigest(ctx, staleAfter)
			if err != nil {
				log.Printf("[Scheduler] Digest failed: %v", err)
				return
			}
			if len(report.Stale) > 0 {
				log.Printf("⏰ [Scheduler] %d listing(s) available for more than %s: %v", len(report.Stale), staleAfter, report.Stale)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule digest: %w", err)
	}

	sched.Start()
	return sched, nil
}
