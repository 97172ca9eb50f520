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
	"sync/atomic"
	"testing"
	"time"

	"github.com/googlecloudplatform/gcsstream/internal/environ"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(env environ.Environment) (*Resolver, *countingFetcher, *timeutil.SimulatedClock) {
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	fetcher := &countingFetcher{}
	cache := NewTokenCache(fetcher, validity, clock, metrics.NewNoopMetrics(), tracing.NewNoopTracer())
	return NewResolver(env, cache), fetcher, clock
}

func TestResolveAccessToken_Priority(t *testing.T) {
	tests := []struct {
		name        string
		env         environ.Map
		want        string
		wantFetches int64
	}{
		{
			name: "explicit_token_wins",
			env: environ.Map{
				environ.OAuthToken:            "abc",
				environ.AuthLocation:          "/etc/auth.json",
				environ.ApplicationCredential: "/key.json",
			},
			want: "abc",
		},
		{
			name: "empty_explicit_token_skips_helper",
			env: environ.Map{
				environ.OAuthToken:            "",
				environ.ApplicationCredential: "/key.json",
			},
			want:        "",
			wantFetches: 0,
		},
		{
			name: "auth_location_defers_to_opener",
			env: environ.Map{
				environ.AuthLocation:          "/etc/auth.json",
				environ.ApplicationCredential: "/key.json",
			},
			want: "",
		},
		{
			name: "empty_auth_location_still_defers",
			env: environ.Map{
				environ.AuthLocation:          "",
				environ.ApplicationCredential: "/key.json",
			},
			want: "",
		},
		{
			name:        "application_credentials_use_cache",
			env:         environ.Map{environ.ApplicationCredential: "/key.json"},
			want:        "token-1",
			wantFetches: 1,
		},
		{
			name: "nothing_set",
			env:  environ.Map{},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fetcher, _ := newTestResolver(tc.env)

			token, err := r.ResolveAccessToken(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tc.want, token)
			assert.Equal(t, tc.wantFetches, fetcher.calls.Load())
		})
	}
}

func TestResolveAccessToken_CachesAcrossCalls(t *testing.T) {
	r, fetcher, clock := newTestResolver(environ.Map{environ.ApplicationCredential: "/key.json"})

	first, err := r.ResolveAccessToken(context.Background())
	require.NoError(t, err)
	clock.AdvanceTime(time.Hour - time.Minute - time.Second)
	second, err := r.ResolveAccessToken(context.Background())
	require.NoError(t, err)
	clock.AdvanceTime(2 * time.Second)
	third, err := r.ResolveAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-1", first)
	assert.Equal(t, "token-1", second)
	assert.Equal(t, "token-2", third)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestResolveAccessToken_ExplicitTokenNeverFetches(t *testing.T) {
	var calls atomic.Int64
	fetcher := TokenFetcherFunc(func(context.Context) (string, error) {
		calls.Add(1)
		return "unused", nil
	})
	cache := NewTokenCache(fetcher, validity, timeutil.RealClock(), metrics.NewNoopMetrics(), tracing.NewNoopTracer())
	r := NewResolver(environ.Map{environ.OAuthToken: "explicit"}, cache)

	for range 3 {
		token, err := r.ResolveAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "explicit", token)
	}
	assert.Zero(t, calls.Load())
}
