package native

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for a Native Mode session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// CommandCount indicates the number of commands sent.
	CommandCount atomic.Uint64
	// TransportErrCount indicates the number of transport failures.
	TransportErrCount atomic.Uint64
	// ProtocolErrCount indicates the number of protocol violations.
	ProtocolErrCount atomic.Uint64
	// PayloadBytesRecv indicates the total payload bytes received by chunked
	// transfers.
	PayloadBytesRecv atomic.Uint64
	// PayloadBytesSent indicates the total payload bytes sent by bulk write
	// transfers.
	PayloadBytesSent atomic.Uint64
}

func (m *SessionMetrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *SessionMetrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *SessionMetrics) incProtocolErrCount() {
	m.ProtocolErrCount.Add(1)
}

func (m *SessionMetrics) addPayloadBytesRecv(n uint64) {
	m.PayloadBytesRecv.Add(n)
}

func (m *SessionMetrics) addPayloadBytesSent(n uint64) {
	m.PayloadBytesSent.Add(n)
}
