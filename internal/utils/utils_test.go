package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLogger(zap.New(core))

	logger.Info("session created", map[string]interface{}{
		"session_id": "abc",
		"err":        errors.New("boom"),
	})
	logger.Debugf("tick %d", 3)

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "session created", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "abc", fields["session_id"])
	assert.Equal(t, "boom", fields["err"])
	assert.Equal(t, "tick 3", logs.All()[1].Message)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestMetricsCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollector(reg)

	m.SessionsActive.Inc()
	m.RecordPhaseTransition("intro", "playing")
	m.RecordPhaseTransition("intro", "playing")
	m.RecordSubmission(true)
	m.RecordAPIRequest("/api/sessions", "POST", 201, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PhaseTransitions.WithLabelValues("intro", "playing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("/api/sessions", "POST", "201")))
}
