package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var admissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "absensi_admissions_total",
	Help: "Clock submissions by outcome and rejection code.",
}, []string{"outcome", "code"})
