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

// Package environ exposes the process environment behind a small interface so
// that credential and billing lookups can be exercised without touching the
// real environment.
package environ

import "os"

// Names of the environment variables consulted when opening gs:// URLs.
const (
	OAuthToken            = "GCS_OAUTH_TOKEN"
	AuthLocation          = "HTS_AUTH_LOCATION"
	ApplicationCredential = "GOOGLE_APPLICATION_CREDENTIALS"
	RequesterPaysProject  = "GCS_REQUESTER_PAYS_PROJECT"
)

type Environment interface {
	// LookupEnv reports the value of the named variable and whether it is set.
	LookupEnv(key string) (string, bool)
}

type osEnvironment struct{}

func (osEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// OS returns the environment of the running process.
func OS() Environment {
	return osEnvironment{}
}

// Map is an Environment backed by a fixed set of variables.
type Map map[string]string

func (m Map) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// NonEmpty returns the value of key when it is set to a non-empty string.
func NonEmpty(env Environment, key string) (string, bool) {
	v, ok := env.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Present reports whether key is set, even to the empty string.
func Present(env Environment, key string) bool {
	_, ok := env.LookupEnv(key)
	return ok
}
