// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics records provisioning outcomes in a Prometheus registry.
// bucketctl is short-lived, so instead of serving /metrics the registry is
// written to a file for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder holds the provisioning metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	uploadedBytes prometheus.Counter
	lastSuccess   *prometheus.GaugeVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bucketctl_operations_total",
				Help: "Total number of bucket provisioning operations by result",
			},
			[]string{"op", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bucketctl_operation_duration_seconds",
				Help:    "Duration of bucket provisioning operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		uploadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bucketctl_uploaded_bytes_total",
				Help: "Total bytes uploaded to the bucket",
			},
		),
		lastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bucketctl_last_success_timestamp_seconds",
				Help: "Unix time of the last successful operation",
			},
			[]string{"op"},
		),
	}
}

// Observe records one operation that began at start and ended with err.
func (r *Recorder) Observe(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	} else {
		r.lastSuccess.WithLabelValues(op).SetToCurrentTime()
	}
	r.operations.WithLabelValues(op, result).Inc()
	r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddUploadedBytes counts bytes successfully uploaded.
func (r *Recorder) AddUploadedBytes(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.uploadedBytes.Add(float64(n))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
