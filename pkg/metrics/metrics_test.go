package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.GameStarted()
	m.RoundCompleted()
	m.RoundCompleted()
	m.GameOver("hard", 3)
	m.RemoteInput(true)
	m.RemoteInput(true)
	m.RemoteInput(false)
	m.ScoreSaved(nil)
	m.ScoreSaved(errors.New("disk full"))
	m.EventDropped()
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GamesStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoundsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GamesOver.WithLabelValues("hard")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemoteInputs.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteInputs.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoresSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreSaveFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DroppedEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectedClients))

	assert.Equal(t, 1, testutil.CollectAndCount(m.Scores))
}

func TestMetrics_nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GameStarted()
		m.RoundCompleted()
		m.GameOver("easy", 1)
		m.RemoteInput(false)
		m.ScoreSaved(nil)
		m.EventDropped()
		m.ClientConnected()
		m.ClientDisconnected()
	})
}
