// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/common"
	"github.com/googlecloudplatform/gcsstream/internal/auth"
	"github.com/googlecloudplatform/gcsstream/internal/environ"
	"github.com/googlecloudplatform/gcsstream/internal/gcsurl"
	"github.com/googlecloudplatform/gcsstream/internal/hfile"
	"github.com/googlecloudplatform/gcsstream/internal/httpstream"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/googlecloudplatform/gcsstream/internal/monitor"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"github.com/jacobsa/timeutil"
)

// app is everything a subcommand needs to open streams.
type app struct {
	registry *hfile.Registry
	resolver gcsurl.TokenResolver
	shutdown common.ShutdownFn
}

type appFactory func(ctx context.Context, c *cfg.Config) (*app, error)

// close flushes the telemetry exporters.
func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil {
		logger.Errorf("Error while shutting down exporters: %v", err)
	}
}

// newApp wires the credential resolver, the HTTP opener and the gs:// handler
// into one registry, using the process environment.
func newApp(ctx context.Context, c *cfg.Config) (*app, error) {
	metricHandle := metrics.NewNoopMetrics()
	var metricExporterShutdownFn common.ShutdownFn
	if cfg.IsMetricsEnabled(&c.Metrics) {
		metricExporterShutdownFn = monitor.SetupOTelMetricExporters(ctx, c)
		if mh, err := metrics.NewOTelMetrics(); err != nil {
			logger.Errorf("Failed to create OTel metrics, falling back to no-op: %v", err)
		} else {
			metricHandle = mh
		}
	}

	traceHandle := tracing.NewNoopTracer()
	shutdownTracingFn := monitor.SetupTracing(ctx, c)
	if shutdownTracingFn != nil {
		traceHandle = tracing.NewOTelTracer()
	}
	shutdownFn := common.JoinShutdownFunc(metricExporterShutdownFn, shutdownTracingFn)

	env := environ.OS()
	fetcher, err := auth.NewTokenFetcher(c.Auth, env)
	if err != nil {
		shutdownFn(ctx)
		return nil, fmt.Errorf("token fetcher: %w", err)
	}
	cache := auth.NewTokenCache(fetcher, c.Auth.TokenValidity, timeutil.RealClock(), metricHandle, traceHandle)
	resolver := auth.NewResolver(env, cache)

	httpConfig, err := httpstream.ConfigFromFlags(c.GcsConnection, metricHandle, traceHandle)
	if err != nil {
		shutdownFn(ctx)
		return nil, fmt.Errorf("http opener: %w", err)
	}

	a := buildApp(env, resolver, httpConfig, metricHandle, traceHandle)
	a.shutdown = shutdownFn
	return a, nil
}

// buildApp registers the HTTP opener and the gs:// handler. The handler
// delegates to the registry so gs+SCHEME URLs reach whichever opener serves
// SCHEME.
func buildApp(
	env environ.Environment,
	resolver gcsurl.TokenResolver,
	httpConfig httpstream.Config,
	metricHandle metrics.MetricHandle,
	traceHandle tracing.TraceHandle) *app {
	registry := hfile.NewRegistry()
	httpstream.NewOpener(httpConfig).Register(registry)
	gcsurl.Register(registry, gcsurl.NewHandler(resolver, env, registry, metricHandle, traceHandle))
	return &app{registry: registry, resolver: resolver}
}
