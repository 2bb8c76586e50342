package telemetry

import (
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Recorder counts booking outcomes and operation timings. Implementations
// must be fire-and-forget: recording never fails a booking and never blocks
// the request path.
type Recorder interface {
	// BookingCreated counts a successful booking creation.
	BookingCreated()

	// BookingCancelled counts a successful cancellation.
	BookingCancelled()

	// ValidationFailure counts a rejected booking operation by reason code.
	ValidationFailure(code string)

	// RideCreated counts a newly scheduled ride.
	RideCreated()

	// RecordDuration records how long a named operation took.
	RecordDuration(name string, d time.Duration)
}

// NewRelicRecorder reports outcomes as New Relic custom metrics.
type NewRelicRecorder struct {
	app *newrelic.Application
}

// NewNewRelicRecorder creates a Recorder backed by the given application.
func NewNewRelicRecorder(app *newrelic.Application) *NewRelicRecorder {
	return &NewRelicRecorder{app: app}
}

func (r *NewRelicRecorder) BookingCreated() {
	r.app.RecordCustomMetric("Custom/RideBookings/Created", 1)
}

func (r *NewRelicRecorder) BookingCancelled() {
	r.app.RecordCustomMetric("Custom/RideBookings/Cancelled", 1)
}

func (r *NewRelicRecorder) ValidationFailure(code string) {
	r.app.RecordCustomMetric("Custom/RideBookings/ValidationFailures", 1)
	r.app.RecordCustomEvent("RideBookingRejected", map[string]interface{}{
		"reason": code,
	})
}

func (r *NewRelicRecorder) RideCreated() {
	r.app.RecordCustomMetric("Custom/Rides/Created", 1)
}

func (r *NewRelicRecorder) RecordDuration(name string, d time.Duration) {
	r.app.RecordCustomMetric("Custom/Duration/"+name, d.Seconds())
}

// NopRecorder discards all measurements. Used when New Relic is disabled.
type NopRecorder struct{}

func (NopRecorder) BookingCreated()                      {}
func (NopRecorder) BookingCancelled()                    {}
func (NopRecorder) ValidationFailure(string)             {}
func (NopRecorder) RideCreated()                         {}
func (NopRecorder) RecordDuration(string, time.Duration) {}

// Ensure concrete types implement Recorder.
var (
	_ Recorder = (*NewRelicRecorder)(nil)
	_ Recorder = NopRecorder{}
)
