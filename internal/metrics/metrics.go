package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	NoticesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notices_sent_total",
			Help: "Billing notices delivered to at least one recipient",
		},
	)

	NoticesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notices_failed_total",
			Help: "Billing notices that failed for every recipient",
		},
	)

	ImportRowsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_rows_processed_total",
			Help: "Spreadsheet rows successfully processed by bulk imports",
		},
	)

	ImportRowsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_rows_failed_total",
			Help: "Spreadsheet rows rejected by bulk imports",
		},
	)

	MassSendItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mass_send_items_total",
			Help: "Mass-send items by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(NoticesSent)
	prometheus.MustRegister(NoticesFailed)
	prometheus.MustRegister(ImportRowsProcessed)
	prometheus.MustRegister(ImportRowsFailed)
	prometheus.MustRegister(MassSendItems)
}
