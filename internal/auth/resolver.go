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

	"github.com/googlecloudplatform/gcsstream/internal/environ"
)

// Resolver decides which access token, if any, accompanies a GCS request.
type Resolver struct {
	env   environ.Environment
	cache *TokenCache
}

func NewResolver(env environ.Environment, cache *TokenCache) *Resolver {
	return &Resolver{env: env, cache: cache}
}

// ResolveAccessToken returns the token to send, or "" when no Authorization
// header should be attached. Sources are consulted in order:
//
//  1. GCS_OAUTH_TOKEN, used verbatim whenever it is set. An empty value
//     resolves to no token without consulting the other sources.
//  2. HTS_AUTH_LOCATION, whose presence leaves authentication to the opener.
//  3. GOOGLE_APPLICATION_CREDENTIALS, whose presence enables the token cache.
func (r *Resolver) ResolveAccessToken(ctx context.Context) (string, error) {
	if token, ok := r.env.LookupEnv(environ.OAuthToken); ok {
		return token, nil
	}

	if environ.Present(r.env, environ.AuthLocation) {
		return "", nil
	}

	if environ.Present(r.env, environ.ApplicationCredential) {
		return r.cache.GetOrRefresh(ctx)
	}

	return "", nil
}
