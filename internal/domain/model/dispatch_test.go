package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOutcome_Counts(t *testing.T) {
	outcome := &DispatchOutcome{
		AlertID: "a1",
		Results: map[string]SinkResult{
			"broadcast": {Sink: "broadcast", Status: SinkStatusDelivered},
			"push":      {Sink: "push", Status: SinkStatusSkipped},
			"sms":       {Sink: "sms", Status: SinkStatusFailed, Kind: FailureKindTimeout},
		},
	}

	assert.Equal(t, 1, outcome.DeliveredCount())
	assert.Equal(t, 1, outcome.FailedCount())
	assert.True(t, outcome.Results["broadcast"].Delivered())
	assert.False(t, outcome.Results["sms"].Delivered())
}
