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
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/internal/auth"
	"github.com/googlecloudplatform/gcsstream/internal/environ"
	"github.com/googlecloudplatform/gcsstream/internal/httpstream"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// objectServer stores objects keyed by "BUCKET/PATH", where BUCKET is the
// first label of the request host.
type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers []http.Header
}

func newObjectServer() *objectServer {
	return &objectServer{objects: make(map[string][]byte)}
}

func (s *objectServer) key(r *http.Request) string {
	bucket, _, _ := strings.Cut(r.Host, ".")
	return bucket + r.URL.Path
}

func (s *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		data, ok := s.objects[s.key(r)]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.put(s.key(r), body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *objectServer) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

func (s *objectServer) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *objectServer) requestHeaders() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

// redirectTransport sends every request to target, keeping the original Host
// header.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

// testAppFactory builds apps that talk to srv and read credentials from env.
// The resolved config of the last invocation is stored in *captured when
// captured is non-nil.
func testAppFactory(t *testing.T, srv *httptest.Server, env environ.Map, captured *cfg.Config) appFactory {
	t.Helper()
	return func(ctx context.Context, c *cfg.Config) (*app, error) {
		if captured != nil {
			*captured = *c
		}
		fetcher := auth.TokenFetcherFunc(func(context.Context) (string, error) {
			return "helper-token-0123", nil
		})
		var clock timeutil.SimulatedClock
		clock.SetTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		cache := auth.NewTokenCache(fetcher, c.Auth.TokenValidity, &clock, metrics.NewNoopMetrics(), tracing.NewNoopTracer())

		httpConfig := httpstream.Config{
			UserAgent:         c.GcsConnection.UserAgent,
			InitialRetrySleep: time.Millisecond,
			MaxRetryAttempts:  1,
		}
		if srv != nil {
			target, err := url.Parse(srv.URL)
			require.NoError(t, err)
			httpConfig.Client = &http.Client{Transport: redirectTransport{target: target}}
		}
		return buildApp(env, auth.NewResolver(env, cache), httpConfig, metrics.NewNoopMetrics(), tracing.NewNoopTracer()), nil
	}
}

// run executes the command line and returns what it printed.
func run(t *testing.T, factory appFactory, args ...string) (string, error) {
	t.Helper()
	rootCmd, err := NewRootCmd(factory)
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
