package services

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"leftover-food-system/models"
)

func TestRunDigest(t *testing.T) {
	c := qt.New(t)
	svc, clock := newTestService(c)
	ctx := context.Background()

	old, err := svc.Create(ctx, biryani())
	c.Assert(err, qt.IsNil)
	clock.Advance(7 * time.Hour)

	claimed, err := svc.Create(ctx, biryani())
	c.Assert(err, qt.IsNil)
	_, err = svc.Claim(ctx, claimed.ID, 7, "Hope NGO")
	c.Assert(err, qt.IsNil)
	_, err = svc.Create(ctx, biryani())
	c.Assert(err, qt.IsNil)

	report, err := svc.RunDigest(ctx, 6*time.Hour)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Counts, qt.DeepEquals, map[models.FoodStatus]int64{
		models.StatusAvailable: 2,
		models.StatusClaimed:   1,
		models.StatusInTransit: 0,
		models.StatusCompleted: 0,
	})
	c.Assert(report.Stale, qt.DeepEquals, []uint{old.ID})

	c.Assert(testutil.ToFloat64(listingsByStatus.WithLabelValues("available")), qt.Equals, 2.0)
	c.Assert(testutil.ToFloat64(listingsByStatus.WithLabelValues("in_transit")), qt.Equals, 0.0)
	c.Assert(testutil.ToFloat64(staleListings), qt.Equals, 1.0)

	// the digest only reads
	got, err := svc.Get(ctx, old.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, models.StatusAvailable)
}

func TestDigestSchedulerRunsOnStart(t *testing.T) {
	c := qt.New(t)
	svc, _ := newTestService(c)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, biryani())
		c.Assert(err, qt.IsNil)
	}
	listingsByStatus.WithLabelValues("available").Set(0)

	sched, err := svc.StartDigestScheduler(time.Hour, 6*time.Hour)
	c.Assert(err, qt.IsNil)
	defer sched.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for testutil.ToFloat64(listingsByStatus.WithLabelValues("available")) != 3 {
		if time.Now().After(deadline) {
			c.Fatal("digest did not run on start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
