package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var processDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_process_duration_sec",
	Help: "Total duration of moderation pipeline runs",
})

var processCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_process_total",
	Help: "Number of submissions processed by the moderation pipeline",
})

var processErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_process_errors",
	Help: "Number of submissions which failed planning",
})

var actionSkipCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_action_skips",
	Help: "Number of planned actions skipped, by cause",
}, []string{"cause"})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_decisions",
	Help: "Number of terminal moderation decisions, by outcome",
}, []string{"outcome"})
