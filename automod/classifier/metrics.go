package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_classifier_api_requests",
	Help: "Number of safety classifier API requests, by HTTP status code",
}, []string{"status"})

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_classifier_api_duration_sec",
	Help: "Duration of safety classifier API requests",
})
