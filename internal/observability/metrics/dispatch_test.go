package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

type recordedMetric struct {
	name  string
	value int64
	tags  map[string]string
}

type fakeSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

func (f *fakeSink) Count(name string, value int64, tags map[string]string) {
	f.counts = append(f.counts, recordedMetric{name: name, value: value, tags: tags})
}

func (f *fakeSink) Timing(name string, value time.Duration, tags map[string]string) {
	f.timings = append(f.timings, recordedMetric{name: name, value: int64(value), tags: tags})
}

func TestDispatchMetrics_Observe(t *testing.T) {
	sink := &fakeSink{}
	m := &DispatchMetrics{Sink: sink}

	m.Observe(&model.DispatchOutcome{
		AlertID: "alert-1",
		Results: map[string]model.SinkResult{
			"broadcast": {Sink: "broadcast", Status: model.SinkStatusDelivered, Duration: time.Millisecond},
			"push": {
				Sink:     "push",
				Status:   model.SinkStatusFailed,
				Kind:     model.FailureKindTimeout,
				Duration: 5 * time.Second,
			},
		},
	})

	assert.Len(t, sink.counts, 3)
	assert.Len(t, sink.timings, 2)

	var failedTags map[string]string
	for _, c := range sink.counts {
		if c.name == "dispatch.sink" && c.tags["sink"] == "push" {
			failedTags = c.tags
		}
	}
	assert.Equal(t, "failed", failedTags["status"])
	assert.Equal(t, "timeout", failedTags["kind"])

	last := sink.counts[len(sink.counts)-1]
	assert.Equal(t, "dispatch.fanout", last.name)
	assert.Equal(t, "1", last.tags["delivered"])
	assert.Equal(t, "1", last.tags["failed"])
}

func TestDispatchMetrics_NilSafety(t *testing.T) {
	var m *DispatchMetrics
	m.Observe(&model.DispatchOutcome{})

	m = &DispatchMetrics{}
	m.Observe(nil)
	m.Observe(&model.DispatchOutcome{AlertID: "alert-1"})
}
