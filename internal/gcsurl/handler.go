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

package gcsurl

import (
	"context"
	"fmt"

	"github.com/googlecloudplatform/gcsstream/internal/environ"
	"github.com/googlecloudplatform/gcsstream/internal/hfile"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// Description is the name the handler registers under.
	Description = "Google Cloud Storage"

	// Priority outranks the generic HTTP handlers for the gs schemes.
	Priority = 2000 + 50

	authorizationHeader = "Authorization"
	userProjectHeader   = "X-Goog-User-Project"
)

// Schemes lists the URL schemes served by the handler.
var Schemes = []string{"gs", "gs+http", "gs+https"}

// TokenResolver returns the access token to attach, or "" for none.
type TokenResolver interface {
	ResolveAccessToken(ctx context.Context) (string, error)
}

// Handler opens gs:// URLs through a delegate HTTP opener.
type Handler struct {
	resolver     TokenResolver
	env          environ.Environment
	opener       hfile.Opener
	metricHandle metrics.MetricHandle
	traceHandle  tracing.TraceHandle
}

func NewHandler(
	resolver TokenResolver,
	env environ.Environment,
	opener hfile.Opener,
	metricHandle metrics.MetricHandle,
	traceHandle tracing.TraceHandle) *Handler {
	return &Handler{
		resolver:     resolver,
		env:          env,
		opener:       opener,
		metricHandle: metricHandle,
		traceHandle:  traceHandle,
	}
}

// Open opens url with a plain mode string and no caller options.
func (h *Handler) Open(ctx context.Context, url, mode string) (hfile.Stream, error) {
	return h.rewrite(ctx, url, mode, false, nil)
}

// OpenWithOptions opens url with caller options. mode is expected to carry the
// options separator already; it is added if missing.
func (h *Handler) OpenWithOptions(ctx context.Context, url, mode string, opts *hfile.Options) (hfile.Stream, error) {
	return h.rewrite(ctx, url, mode, true, opts)
}

// Opener adapts h to the registry's opener contract.
func (h *Handler) Opener() hfile.Opener {
	return hfile.OpenerFunc(func(ctx context.Context, url, mode string, opts *hfile.Options) (hfile.Stream, error) {
		if opts == nil && !hfile.HasOptions(mode) {
			return h.Open(ctx, url, mode)
		}
		return h.OpenWithOptions(ctx, url, mode, opts)
	})
}

func (h *Handler) rewrite(ctx context.Context, gsURL, mode string, withOptions bool, opts *hfile.Options) (stream hfile.Stream, err error) {
	ctx, span := h.traceHandle.StartSpan(ctx, tracing.OpenGCS)
	defer h.traceHandle.EndSpan(span)

	accessMode := metricAccessMode(hfile.Access(mode))
	defer func() {
		if err != nil {
			h.metricHandle.StreamOpenErrorCount(1, accessMode)
			h.traceHandle.RecordError(span, err)
		}
	}()

	if !IsGCSURL(gsURL) {
		err = fmt.Errorf("%w: %q is not a gs:// URL", hfile.ErrUnsupportedScheme, gsURL)
		return
	}

	url := Rewrite(gsURL, mode)
	logger.Tracef("rewrote URL as %s", url)
	h.traceHandle.SetAttributes(span, attribute.String("url", url), attribute.String("mode", mode))

	token, err := h.resolver.ResolveAccessToken(ctx)
	if err != nil {
		err = fmt.Errorf("resolving access token for %s: %w", gsURL, err)
		return
	}

	var headers []string
	if token != "" {
		headers = append(headers, authorizationHeader+": Bearer "+token)
	}
	if project, ok := environ.NonEmpty(h.env, environ.RequesterPaysProject); ok {
		headers = append(headers, userProjectHeader+": "+project)
	}

	h.metricHandle.StreamOpenCount(1, accessMode)

	if !withOptions && !hfile.HasOptions(mode) && len(headers) == 0 {
		return h.opener.Open(ctx, url, mode, nil)
	}

	delegated := &hfile.Options{}
	if opts != nil {
		delegated.Headers = append(delegated.Headers, opts.Headers...)
		delegated.Extra = opts.Extra
	}
	delegated.Headers = append(delegated.Headers, headers...)

	return h.opener.Open(ctx, url, hfile.WithOptions(mode), delegated)
}

func metricAccessMode(a hfile.AccessMode) metrics.AccessMode {
	switch a {
	case hfile.AccessRead:
		return metrics.AccessModeRead
	case hfile.AccessWrite:
		return metrics.AccessModeWrite
	default:
		return metrics.AccessModeOther
	}
}

// Register installs h for every gs scheme in r.
func Register(r *hfile.Registry, h *Handler) {
	sh := &hfile.SchemeHandler{
		Opener:       h.Opener(),
		Description:  Description,
		Priority:     Priority,
		AlwaysRemote: true,
	}
	for _, scheme := range Schemes {
		r.AddSchemeHandler(scheme, sh)
	}
}
