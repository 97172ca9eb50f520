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

package httpstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/googleapis/gax-go/v2"
	"github.com/googlecloudplatform/gcsstream/internal/hfile"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
)

// UserAgentOption is the only named option accepted in hfile.Options.Extra.
const UserAgentOption = "user-agent"

var (
	// ErrUnsupportedOption is returned for unknown named options.
	ErrUnsupportedOption = errors.New("unsupported option")

	// ErrMalformedHeader is returned for header strings not of the form
	// "Name: value".
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnsupportedMode is returned for modes that neither read nor write.
	ErrUnsupportedMode = errors.New("unsupported mode")
)

var timeNow = time.Now

// Opener opens http and https URLs.
type Opener struct {
	client *http.Client
	config Config
}

func NewOpener(c Config) *Opener {
	c.setDefaults()
	client := c.Client
	if client == nil {
		client = CreateHttpClient(&c)
	}
	return &Opener{client: client, config: c}
}

// Register installs o for the http and https schemes.
func (o *Opener) Register(r *hfile.Registry) {
	for _, scheme := range []string{"http", "https"} {
		r.AddSchemeHandler(scheme, &hfile.SchemeHandler{
			Opener:       o,
			Description:  "HTTP",
			Priority:     2000,
			AlwaysRemote: true,
		})
	}
}

func (o *Opener) Open(ctx context.Context, url, mode string, opts *hfile.Options) (hfile.Stream, error) {
	header, err := requestHeader(opts)
	if err != nil {
		return nil, err
	}

	switch hfile.Access(mode) {
	case hfile.AccessRead:
		return o.openRead(ctx, url, header)
	case hfile.AccessWrite:
		return o.openWrite(ctx, url, header)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// requestHeader converts opener options to request headers.
func requestHeader(opts *hfile.Options) (http.Header, error) {
	header := make(http.Header)
	if opts == nil {
		return header, nil
	}

	for _, h := range opts.Headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, redactHeader(h))
		}
		header.Add(name, strings.TrimSpace(value))
	}

	for k, v := range opts.Extra {
		switch k {
		case UserAgentOption:
			header.Set("User-Agent", v)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOption, k)
		}
	}
	return header, nil
}

// redactHeader keeps only the header name, since values may hold credentials.
func redactHeader(h string) string {
	if name, _, ok := strings.Cut(h, ":"); ok {
		return name + ": <redacted>"
	}
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}

// shouldRetry reports whether a failed request is worth repeating.
func shouldRetry(err error) bool {
	return storage.ShouldRetry(err)
}

// do sends a request built by newReq, retrying transient failures with
// exponential backoff. The returned response has a 2xx status.
func (o *Opener) do(ctx context.Context, method metrics.HttpMethod, url string, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	bo := gax.Backoff{
		Initial:    o.config.InitialRetrySleep,
		Max:        o.config.MaxRetrySleep,
		Multiplier: o.config.RetryMultiplier,
	}

	for attempt := 1; ; attempt++ {
		resp, err := o.attempt(ctx, method, url, newReq)
		if err == nil {
			return resp, nil
		}
		if attempt >= o.config.MaxRetryAttempts || !shouldRetry(err) {
			return nil, err
		}

		pause := bo.Pause()
		logger.Warnf("%s %s failed (attempt %d), retrying in %v: %v", method, url, attempt, pause, err)
		o.config.MetricHandle.HttpRetryCount(1)
		if sleepErr := gax.Sleep(ctx, pause); sleepErr != nil {
			return nil, fmt.Errorf("%w (last error: %v)", sleepErr, err)
		}
	}
}

func (o *Opener) attempt(ctx context.Context, method metrics.HttpMethod, url string, newReq func(ctx context.Context) (*http.Request, error)) (resp *http.Response, err error) {
	ctx, span := o.config.TraceHandle.StartClientSpan(ctx, tracing.HttpRequest)
	defer o.config.TraceHandle.EndSpan(span)

	requestID := uuid.NewString()
	o.config.TraceHandle.SetAttributes(span,
		attribute.String("http.method", string(method)),
		attribute.String("request_id", requestID))

	req, err := newReq(ctx)
	if err != nil {
		return nil, err
	}

	logger.Tracef("httpstream: <- %s (%s, %s)", method, url, requestID)
	start := timeNow()
	resp, err = o.client.Do(req)
	o.config.MetricHandle.HttpRequestCount(1, method)
	o.config.MetricHandle.HttpRequestLatencies(ctx, timeNow().Sub(start), method)

	if err == nil {
		if err = googleapi.CheckResponse(resp); err != nil {
			resp.Body.Close()
			resp = nil
		}
	}

	if err != nil {
		logger.Tracef("httpstream: -> %s error (%s): %v", method, requestID, err)
		o.config.TraceHandle.RecordError(span, err)
		return nil, err
	}

	logger.Tracef("httpstream: -> %s %s (%s)", method, resp.Status, requestID)
	o.config.TraceHandle.SetAttributes(span, attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// drainAndClose discards a bounded amount of body so the connection can be
// reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, 64*1024)
	body.Close()
}
