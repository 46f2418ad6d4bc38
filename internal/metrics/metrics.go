package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks API latency per route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "donatrack_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"method", "route", "status"},
	)

	// RecordMutations counts add, update and remove calls on the record store
	RecordMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatrack_record_mutations_total",
			Help: "Record store mutations by kind, operation and result",
		},
		[]string{"kind", "op", "result"},
	)

	// EventsPublished counts record events handed to the broker
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatrack_record_events_published_total",
			Help: "Record events published to AMQP by result",
		},
		[]string{"result"},
	)

	// RowsExported counts activity rows appended to the spreadsheet
	RowsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatrack_sheet_rows_exported_total",
			Help: "Activity rows written to Google Sheets by result",
		},
		[]string{"result"},
	)

	// FormSubmissions counts form submit attempts
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatrack_form_submissions_total",
			Help: "Form submissions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Result maps an error to the result label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordHTTPRequest records the duration of one request
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordMutation counts one store mutation
func RecordMutation(kind, op string, err error) {
	RecordMutations.WithLabelValues(kind, op, Result(err)).Inc()
}

// RecordPublish counts one publish attempt
func RecordPublish(err error) {
	EventsPublished.WithLabelValues(Result(err)).Inc()
}

// RecordExport counts one spreadsheet append
func RecordExport(err error) {
	RowsExported.WithLabelValues(Result(err)).Inc()
}

// RecordFormSubmission counts one submit with outcome submitted, invalid or failed
func RecordFormSubmission(kind, outcome string) {
	FormSubmissions.WithLabelValues(kind, outcome).Inc()
}
