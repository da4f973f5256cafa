package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deliveryCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "transport_deliveries",
	Help: "Number of outbound delivery attempts, by payload kind and outcome",
}, []string{"kind", "outcome"})

var eventDispatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "transport_events_dispatched",
	Help: "Number of events dispatched through the router, by kind",
}, []string{"kind"})

var mediaGroupBuffered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "transport_media_group_messages_buffered",
	Help: "Number of messages buffered into media groups",
})

var mediaGroupFlushed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "transport_media_group_batches_flushed",
	Help: "Number of media group batches flushed",
})

var mediaGroupBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "transport_media_group_batch_size",
	Help:    "Size of flushed media group batches",
	Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
})
