// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/googlecloudplatform/gcsstream/cfg"
	promclient "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mockExporter struct {
	metric.Exporter
	exportFunc func(context.Context, *metricdata.ResourceMetrics) error
}

func (m *mockExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, rm)
	}
	return nil
}

func (m *mockExporter) ForceFlush(ctx context.Context) error {
	return nil
}

func (m *mockExporter) Shutdown(ctx context.Context) error {
	return nil
}

func TestPermissionAwareExporter_ExportSuccess(t *testing.T) {
	mock := &mockExporter{}
	exporter := &permissionAwareExporter{Exporter: mock}

	err := exporter.Export(context.Background(), &metricdata.ResourceMetrics{})

	assert.NoError(t, err)
	assert.False(t, exporter.disabled.Load())
}

func TestPermissionAwareExporter_ExportPermissionDenied(t *testing.T) {
	mock := &mockExporter{
		exportFunc: func(ctx context.Context, rm *metricdata.ResourceMetrics) error {
			return status.Error(codes.PermissionDenied, "permission denied")
		},
	}
	exporter := &permissionAwareExporter{Exporter: mock}
	// First call fails and disables
	err := exporter.Export(context.Background(), &metricdata.ResourceMetrics{})
	require.Error(t, err)
	require.Equal(t, codes.PermissionDenied, status.Code(err))
	require.True(t, exporter.disabled.Load())

	// Second call should be skipped (return nil)
	err = exporter.Export(context.Background(), &metricdata.ResourceMetrics{})

	assert.NoError(t, err)
}

func TestPermissionAwareExporter_ExportOtherError(t *testing.T) {
	mock := &mockExporter{
		exportFunc: func(ctx context.Context, rm *metricdata.ResourceMetrics) error {
			return errors.New("some other error")
		},
	}
	exporter := &permissionAwareExporter{Exporter: mock}

	err := exporter.Export(context.Background(), &metricdata.ResourceMetrics{})

	assert.Error(t, err)
	assert.False(t, exporter.disabled.Load())
}

func TestMetricFormatter(t *testing.T) {
	name := metricFormatter(metricdata.Metrics{Name: "auth/token_fetch_count"})

	assert.Equal(t, "custom.googleapis.com/gcsstream/auth/token_fetch_count", name)
}

func TestSetupPrometheus_DisabledForNonPositivePort(t *testing.T) {
	for _, port := range []int64{-1, 0} {
		opts, shutdown := setupPrometheus(port)

		assert.Nil(t, opts)
		assert.Nil(t, shutdown)
	}
}

func TestSetupCloudMonitoring_DisabledForNonPositiveInterval(t *testing.T) {
	opts, shutdown := setupCloudMonitoring(0)

	assert.Nil(t, opts)
	assert.Nil(t, shutdown)
}

func TestNewTraceProvider(t *testing.T) {
	var c cfg.Config

	tp, shutdown, err := newTraceProvider(context.Background(), &c)
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, shutdown)

	c.Monitoring.ExperimentalTracingMode = "stdout"
	tp, shutdown, err = newTraceProvider(context.Background(), &c)
	require.NoError(t, err)
	assert.NotNil(t, tp)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_DisabledByDefault(t *testing.T) {
	assert.Nil(t, SetupTracing(context.Background(), &cfg.Config{}))
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestPrometheusExporter(t *testing.T) {
	ctx := context.Background()
	reg := promclient.NewRegistry()
	exporter, err := newPrometheusExporter(reg)
	require.NoError(t, err)
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	counter, err := provider.Meter("gcsstream").Int64Counter("stream/open_count")
	require.NoError(t, err)

	counter.Add(ctx, 3)
	families, err := reg.Gather()

	require.NoError(t, err)
	family := findFamily(families, "stream_open_count")
	require.NotNil(t, family)
	assert.Equal(t, dto.MetricType_COUNTER, family.GetType())
	require.Len(t, family.GetMetric(), 1)
	assert.Equal(t, 3.0, family.GetMetric()[0].GetCounter().GetValue())
	var text bytes.Buffer
	_, err = expfmt.MetricFamilyToText(&text, family)
	require.NoError(t, err)
	assert.Contains(t, text.String(), "stream_open_count 3")
}
