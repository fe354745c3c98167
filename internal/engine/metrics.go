package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recomputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "concord_recompute_total",
	Help: "Weighting and ranking recomputes by kind and outcome.",
}, []string{"kind", "outcome"})
