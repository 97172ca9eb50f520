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

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
	"go.opentelemetry.io/otel/attribute"
)

// TokenCache holds the most recently fetched access token and refreshes it
// from a TokenFetcher once the validity window has elapsed.
//
// Safe for concurrent access. At most one fetch is in flight at a time;
// callers arriving during a fetch wait for it and reuse its result.
type TokenCache struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	clock        timeutil.Clock
	fetcher      TokenFetcher
	metricHandle metrics.MetricHandle
	traceHandle  tracing.TraceHandle

	/////////////////////////
	// Constant data
	/////////////////////////

	validity time.Duration

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu syncutil.InvariantMutex

	// The last successfully fetched token, or empty if none.
	//
	// INVARIANT: token == "" iff fetchedAt.IsZero()
	//
	// GUARDED_BY(mu)
	token string

	// GUARDED_BY(mu)
	fetchedAt time.Time
}

// NewTokenCache creates an empty cache. A non-positive validity selects the
// default window.
func NewTokenCache(
	fetcher TokenFetcher,
	validity time.Duration,
	clock timeutil.Clock,
	metricHandle metrics.MetricHandle,
	traceHandle tracing.TraceHandle) *TokenCache {
	if validity <= 0 {
		validity = cfg.DefaultTokenValidity
	}
	c := &TokenCache{
		clock:        clock,
		fetcher:      fetcher,
		metricHandle: metricHandle,
		traceHandle:  traceHandle,
		validity:     validity,
	}
	c.mu = syncutil.NewInvariantMutex(c.checkInvariants)
	return c
}

func (c *TokenCache) checkInvariants() {
	if (c.token == "") != c.fetchedAt.IsZero() {
		panic(fmt.Sprintf("token cache: token set %v but fetch time %v", c.token != "", c.fetchedAt))
	}
}

// LOCKS_REQUIRED(c.mu)
func (c *TokenCache) fresh(now time.Time) bool {
	return !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.validity
}

// GetOrRefresh returns the cached token, fetching a new one first when the
// cache is empty or stale. An empty string means no token is available.
//
// A failed fetch leaves the cache untouched, so a previously fetched token is
// still returned. The exception is an oversized token, which fails the call.
//
// LOCKS_EXCLUDED(c.mu)
func (c *TokenCache) GetOrRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.fresh(now) {
		return c.token, nil
	}

	token, err := c.fetch(ctx)
	switch {
	case err == nil:
		c.token = token
		c.fetchedAt = now
		logger.Debugf("Fetched access token %s", MaskToken(token))

	case errors.Is(err, ErrTokenTooLarge):
		return "", err

	default:
		if c.token != "" {
			logger.Warnf("Refreshing access token failed, reusing token fetched at %v: %v", c.fetchedAt, err)
		} else {
			logger.Warnf("Fetching access token failed: %v", err)
		}
	}

	return c.token, nil
}

// LOCKS_REQUIRED(c.mu)
func (c *TokenCache) fetch(ctx context.Context) (token string, err error) {
	ctx, span := c.traceHandle.StartSpan(ctx, tracing.FetchToken)
	defer c.traceHandle.EndSpan(span)

	start := c.clock.Now()
	token, err = c.fetcher.FetchToken(ctx)
	c.metricHandle.TokenFetchLatencies(ctx, c.clock.Now().Sub(start))

	status := metrics.TokenFetchStatusSuccess
	switch {
	case errors.Is(err, ErrTokenTooLarge):
		status = metrics.TokenFetchStatusOversized
	case err != nil:
		status = metrics.TokenFetchStatusFailure
	}
	c.metricHandle.TokenFetchCount(1, status)
	c.traceHandle.SetAttributes(span, attribute.String("status", string(status)))
	c.traceHandle.RecordError(span, err)
	return
}
