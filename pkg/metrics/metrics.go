package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	audienceSync = "audience_sync"

	jobsProcessedTotal   = "jobs_processed_total"
	uploadBatchesTotal   = "upload_batches_total"
	recordsUploadedTotal = "records_uploaded_total"
	recordsInvalidTotal  = "records_invalid_total"
	alertsRaisedTotal    = "alerts_raised_total"

	jobKindLabel     = "kind"
	jobStatusLabel   = "status"
	uploadModeLabel  = "mode"
	alertReasonLabel = "reason"
)

var jobsProcessedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: audienceSync,
		Name:      jobsProcessedTotal,
		Help:      "number of pipeline jobs processed, by kind and outcome",
	},
	[]string{jobKindLabel, jobStatusLabel},
)

var uploadBatchesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: audienceSync,
		Name:      uploadBatchesTotal,
		Help:      "number of batches sent to the ingestion endpoints",
	},
	[]string{uploadModeLabel},
)

var recordsUploadedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: audienceSync,
		Name:      recordsUploadedTotal,
		Help:      "number of records acknowledged by the platform",
	},
	[]string{uploadModeLabel},
)

var recordsInvalidTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: audienceSync,
		Name:      recordsInvalidTotal,
		Help:      "number of records the platform rejected as invalid",
	},
	[]string{uploadModeLabel},
)

var alertsRaisedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: audienceSync,
		Name:      alertsRaisedTotal,
		Help:      "number of verification alerts raised, by reason",
	},
	[]string{alertReasonLabel},
)

func IncreaseJobsProcessedMetric(kind, status string) {
	jobsProcessedTotalMetric.With(prometheus.Labels{jobKindLabel: kind, jobStatusLabel: status}).Inc()
}

func IncreaseUploadBatchesMetric(mode string) {
	uploadBatchesTotalMetric.With(prometheus.Labels{uploadModeLabel: mode}).Inc()
}

func AddRecordsUploadedMetric(mode string, count int64) {
	recordsUploadedTotalMetric.With(prometheus.Labels{uploadModeLabel: mode}).Add(float64(count))
}

func AddRecordsInvalidMetric(mode string, count int64) {
	recordsInvalidTotalMetric.With(prometheus.Labels{uploadModeLabel: mode}).Add(float64(count))
}

func IncreaseAlertsRaisedMetric(reason string) {
	alertsRaisedTotalMetric.With(prometheus.Labels{alertReasonLabel: reason}).Inc()
}

func RegisterMetrics() {
	prometheus.MustRegister(jobsProcessedTotalMetric)
	prometheus.MustRegister(uploadBatchesTotalMetric)
	prometheus.MustRegister(recordsUploadedTotalMetric)
	prometheus.MustRegister(recordsInvalidTotalMetric)
	prometheus.MustRegister(alertsRaisedTotalMetric)
}
