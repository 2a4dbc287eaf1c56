package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contributionsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_contributions_issued_total",
			Help: "Number of contributions written to the ledger",
		},
		[]string{"flow"},
	)

	claimCommentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_claim_comments_total",
			Help: "Number of claim-link comments posted for unknown contributors",
		},
	)
)
