package completion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var completionAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_completion_api_requests",
	Help: "Number of completion API requests, by HTTP status code",
}, []string{"status"})

var completionAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_completion_api_duration_sec",
	Help: "Duration of completion API requests",
})
