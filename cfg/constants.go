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

package cfg

import "time"

const (
	// Logging-level constants

	TRACE   string = "TRACE"
	DEBUG   string = "DEBUG"
	INFO    string = "INFO"
	WARNING string = "WARNING"
	ERROR   string = "ERROR"
	OFF     string = "OFF"
)

const (
	// DefaultCredentialHelper prints a fresh access token for the application
	// default credentials on its first line of output.
	DefaultCredentialHelper = "gcloud auth application-default print-access-token"

	// DefaultMaxTokenSize bounds the accepted access token length. See
	// https://developers.google.com/identity/protocols/oauth2 for token sizes.
	DefaultMaxTokenSize = 2048

	// DefaultTokenValidity is 60 seconds short of the 3600 second lifetime of
	// service account access tokens, to allow for clock skew and slow servers.
	DefaultTokenValidity = 3540 * time.Second

	// MaxTokenValidity is the lifetime of a service account access token.
	MaxTokenValidity = 3600 * time.Second
)
