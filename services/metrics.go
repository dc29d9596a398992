// services/metrics.go
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "food_claims_total",
		Help: "Claim attempts by outcome (claimed, already_claimed, not_found, error).",
	}, []string{"outcome"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "food_transitions_total",
		Help: "Successful lifecycle transitions by target status.",
	}, []string{"to"})

	listingsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "food_listings",
		Help: "Listings per status as of the last digest run.",
	}, []string{"status"})

	staleListings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "food_listings_stale",
		Help: "Available listings older than the stale threshold as of the last digest run.",
	})
)
