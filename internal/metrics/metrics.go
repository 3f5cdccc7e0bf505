package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed alongside the per-route metrics from fiberprometheus.
var (
	ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studiodesk_imported_rows_total",
		Help: "Rows loaded through spreadsheet import, by entity kind.",
	}, []string{"entity"})

	RemoteSyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studiodesk_remote_sync_failures_total",
		Help: "Fire-and-forget pushes to the upstream API that failed.",
	})

	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studiodesk_notifications_total",
		Help: "User-facing notifications appended to the feed.",
	})

	CollectionSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "studiodesk_collection_size",
		Help: "Current number of records per store collection.",
	}, []string{"collection"})
)
