// SPDX-License-Identifier: AGPL-3.0-or-later
// Interlocutor - an Opulent Voice radio endpoint
// Copyright (C) 2026 The Interlocutor Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the frame engine's Transmission Statistics as
// Prometheus collectors.
type Metrics struct {
	FramesEncodedTotal *prometheus.CounterVec // labels: class=voice|control|text|keepalive
	FramesSentTotal    *prometheus.CounterVec
	FramesDroppedTotal *prometheus.CounterVec // labels: class, reason

	FramesReceivedTotal  prometheus.Counter
	ReassemblyErrorTotal *prometheus.CounterVec // labels: reason
	ReassemblyPurgeTotal prometheus.Counter

	COBSOverheadBytes prometheus.Histogram

	QueueDepth *prometheus.GaugeVec // labels: queue=control|text

	PTTActive prometheus.Gauge
}

// NewMetrics builds and registers the collectors against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesEncodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opv_frames_encoded_total",
			Help: "Total wire frames encoded, by traffic class",
		}, []string{"class"}),
		FramesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opv_frames_sent_total",
			Help: "Total wire frames sent over UDP, by traffic class",
		}, []string{"class"}),
		FramesDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opv_frames_dropped_total",
			Help: "Total frames dropped before transmission, by traffic class and reason",
		}, []string{"class", "reason"}),
		FramesReceivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opv_frames_received_total",
			Help: "Total wire frames received over UDP",
		}),
		ReassemblyErrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opv_reassembly_errors_total",
			Help: "Total reassembly failures, by reason",
		}, []string{"reason"}),
		ReassemblyPurgeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opv_reassembly_purges_total",
			Help: "Total times the reassembly buffer overflowed and was purged",
		}),
		COBSOverheadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opv_cobs_overhead_bytes",
			Help:    "Per-message COBS overhead in bytes",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opv_queue_depth",
			Help: "Current depth of the control/text priority queues",
		}, []string{"queue"}),
		PTTActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opv_ptt_active",
			Help: "1 if PTT is currently held, 0 otherwise",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(
		m.FramesEncodedTotal,
		m.FramesSentTotal,
		m.FramesDroppedTotal,
		m.FramesReceivedTotal,
		m.ReassemblyErrorTotal,
		m.ReassemblyPurgeTotal,
		m.COBSOverheadBytes,
		m.QueueDepth,
		m.PTTActive,
	)
}

// RecordEncoded increments the encoded-frame counter for class.
func (m *Metrics) RecordEncoded(class string) {
	m.FramesEncodedTotal.WithLabelValues(class).Inc()
}

// RecordSent increments the sent-frame counter for class.
func (m *Metrics) RecordSent(class string) {
	m.FramesSentTotal.WithLabelValues(class).Inc()
}

// RecordDropped increments the dropped-frame counter for class/reason.
func (m *Metrics) RecordDropped(class, reason string) {
	m.FramesDroppedTotal.WithLabelValues(class, reason).Inc()
}

// RecordReceived increments the received-frame counter.
func (m *Metrics) RecordReceived() {
	m.FramesReceivedTotal.Inc()
}

// RecordReassemblyError increments the reassembly-error counter for reason.
func (m *Metrics) RecordReassemblyError(reason string) {
	m.ReassemblyErrorTotal.WithLabelValues(reason).Inc()
}

// RecordReassemblyPurge increments the buffer-purge counter.
func (m *Metrics) RecordReassemblyPurge() {
	m.ReassemblyPurgeTotal.Inc()
}

// RecordCOBSOverhead observes the number of overhead bytes a COBS
// encode operation added.
func (m *Metrics) RecordCOBSOverhead(bytes int) {
	m.COBSOverheadBytes.Observe(float64(bytes))
}

// SetQueueDepth sets the current depth gauge for the named queue.
func (m *Metrics) SetQueueDepth(queue string, depth int) {
	m.QueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// SetPTTActive sets the PTT gauge to 1 (active) or 0 (released).
func (m *Metrics) SetPTTActive(active bool) {
	if active {
		m.PTTActive.Set(1)
		return
	}
	m.PTTActive.Set(0)
}
