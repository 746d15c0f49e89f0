package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.RecordSessions(1, 1)
		m.RecordAuthAccepted()
		m.RecordAuthRejected("credentials")
		m.RecordReconnect()
		m.RecordRename(true)
		m.RecordFormatError()
		m.RecordBroadcast("text", 3, 1)
	})
	require.Nil(t, m.Registry())
}

func TestRecordBroadcast(t *testing.T) {
	m := New()

	m.RecordBroadcast("text", 3, 2)
	m.RecordBroadcast("text", 1, 0)
	m.RecordBroadcast("roster", 1, 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("text")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("roster")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.deliveryDrops))
}

func TestRecordSessionsAndAuth(t *testing.T) {
	m := New()

	m.RecordSessions(4, 2)
	m.RecordAuthRejected("credentials")
	m.RecordAuthRejected("credentials")
	m.RecordRename(false)

	require.Equal(t, 4.0, testutil.ToFloat64(m.activeSessions))
	require.Equal(t, 2.0, testutil.ToFloat64(m.authorizedSessions))
	require.Equal(t, 2.0, testutil.ToFloat64(m.authRejected.WithLabelValues("credentials")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.renames.WithLabelValues("failed")))
}
