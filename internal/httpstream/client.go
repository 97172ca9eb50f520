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

// Package httpstream opens HTTP(S) URLs as streams: GET for reading with
// ranged re-requests on seek, and a streamed PUT for writing.
package httpstream

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/internal/ratelimit"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
)

const (
	DefaultInitialRetrySleep = time.Second
	DefaultMaxRetryAttempts  = 5
)

type Config struct {
	// ClientProtocol selects an HTTP/1.1-only or an HTTP/2 transport.
	ClientProtocol    cfg.Protocol
	UserAgent         string
	HttpClientTimeout time.Duration

	InitialRetrySleep time.Duration
	MaxRetrySleep     time.Duration
	RetryMultiplier   float64
	MaxRetryAttempts  int

	// Throttle limits read bandwidth. Nil disables limiting.
	Throttle ratelimit.Throttle

	MetricHandle metrics.MetricHandle
	TraceHandle  tracing.TraceHandle

	// Client overrides the client built from the settings above.
	Client *http.Client
}

// ConfigFromFlags builds a Config from the gcs-connection settings.
func ConfigFromFlags(c cfg.GcsConnectionConfig, metricHandle metrics.MetricHandle, traceHandle tracing.TraceHandle) (Config, error) {
	throttle, err := ratelimit.NewBandwidthThrottle(c.LimitBytesPerSec)
	if err != nil {
		return Config{}, err
	}
	return Config{
		ClientProtocol:    c.ClientProtocol,
		UserAgent:         c.UserAgent,
		HttpClientTimeout: c.HttpClientTimeout,
		MaxRetrySleep:     c.MaxRetrySleep,
		RetryMultiplier:   c.RetryMultiplier,
		Throttle:          throttle,
		MetricHandle:      metricHandle,
		TraceHandle:       traceHandle,
	}, nil
}

func (c *Config) setDefaults() {
	if c.InitialRetrySleep <= 0 {
		c.InitialRetrySleep = DefaultInitialRetrySleep
	}
	if c.MaxRetrySleep < c.InitialRetrySleep {
		c.MaxRetrySleep = c.InitialRetrySleep
	}
	if c.RetryMultiplier < 1 {
		c.RetryMultiplier = 2
	}
	if c.MaxRetryAttempts <= 0 {
		c.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if c.MetricHandle == nil {
		c.MetricHandle = metrics.NewNoopMetrics()
	}
	if c.TraceHandle == nil {
		c.TraceHandle = tracing.NewNoopTracer()
	}
}

// CreateHttpClient builds the client used for every stream request.
func CreateHttpClient(c *Config) *http.Client {
	var transport *http.Transport
	// Using http1 makes the client more performant.
	if c.ClientProtocol == cfg.HTTP1 {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			// This disables HTTP/2 in transport.
			TLSNextProto: make(
				map[string]func(string, *tls.Conn) http.RoundTripper,
			),
		}
	} else {
		transport = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: true,
		}
	}

	return &http.Client{
		// Setting UserAgent through RoundTripper middleware
		Transport: &userAgentRoundTripper{
			wrapped:   transport,
			UserAgent: c.UserAgent,
		},
		Timeout: c.HttpClientTimeout,
	}
}

// userAgentRoundTripper sets the User-Agent header on requests that do not
// carry one already.
type userAgentRoundTripper struct {
	wrapped   http.RoundTripper
	UserAgent string
}

func (ug *userAgentRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if ug.UserAgent != "" && r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", ug.UserAgent)
	}
	return ug.wrapped.RoundTrip(r)
}
