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

package metrics

import (
	"context"
	"time"
)

// AccessMode is the access requested when a stream is opened.
type AccessMode string

const (
	AccessModeRead  AccessMode = "read"
	AccessModeWrite AccessMode = "write"
	AccessModeOther AccessMode = "other"
)

// TokenFetchStatus is the outcome of a single credential fetch.
type TokenFetchStatus string

const (
	TokenFetchStatusSuccess   TokenFetchStatus = "success"
	TokenFetchStatusFailure   TokenFetchStatus = "failure"
	TokenFetchStatusOversized TokenFetchStatus = "oversized"
)

// HttpMethod is the HTTP verb of a request made by the stream opener.
type HttpMethod string

const (
	HttpMethodGet HttpMethod = "GET"
	HttpMethodPut HttpMethod = "PUT"
)

// MetricHandle records the metrics emitted while resolving credentials and
// opening streams.
type MetricHandle interface {
	// TokenFetchCount counts invocations of the credential source.
	TokenFetchCount(inc int64, status TokenFetchStatus)

	// TokenFetchLatencies records how long a credential fetch took.
	TokenFetchLatencies(ctx context.Context, latency time.Duration)

	// StreamOpenCount counts gs:// opens handed to the delegate opener.
	StreamOpenCount(inc int64, accessMode AccessMode)

	// StreamOpenErrorCount counts gs:// opens that failed.
	StreamOpenErrorCount(inc int64, accessMode AccessMode)

	HttpRequestCount(inc int64, method HttpMethod)

	HttpRequestLatencies(ctx context.Context, latency time.Duration, method HttpMethod)

	HttpRetryCount(inc int64)

	// ReadBytesCount counts bytes returned to readers of HTTP streams.
	ReadBytesCount(inc int64)

	// WriteBytesCount counts bytes accepted from writers of HTTP streams.
	WriteBytesCount(inc int64)
}
