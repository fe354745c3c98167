package tally

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var voteOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "concord_vote_operations_total",
	Help: "Vote operations by kind and outcome.",
}, []string{"op", "outcome"})
