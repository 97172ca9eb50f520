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

// Package gcsurl opens gs:// URLs by rewriting them to Cloud Storage HTTPS
// endpoints and handing them to an HTTP opener with the right credentials.
package gcsurl

import (
	"strings"

	"github.com/googlecloudplatform/gcsstream/internal/hfile"
)

// Endpoint host suffixes appended to the bucket name.
const (
	downloadHostSuffix = ".storage-download"
	uploadHostSuffix   = ".storage-upload"
	genericHostSuffix  = ".storage"
	domainSuffix       = ".googleapis.com"
)

// IsGCSURL reports whether url uses the gs or gs+SCHEME syntax.
func IsGCSURL(url string) bool {
	if len(url) < 3 || !strings.EqualFold(url[:2], "gs") {
		return false
	}
	switch url[2] {
	case ':':
		return true
	case '+':
		return strings.IndexByte(url, ':') > 3
	default:
		return false
	}
}

// Rewrite maps gs[+SCHEME]://BUCKET/PATH to SCHEME://BUCKET.HOST/PATH, where
// SCHEME defaults to https and HOST depends on whether mode reads, writes or
// neither. Everything after the bucket, including any query or fragment, is
// kept verbatim.
//
// REQUIRES: IsGCSURL(gsURL)
func Rewrite(gsURL, mode string) string {
	var sb strings.Builder
	sb.Grow(len(gsURL) + len(downloadHostSuffix) + len(domainSuffix) + len("https:"))

	var rest string
	if gsURL[2] == '+' {
		colon := strings.IndexByte(gsURL, ':')
		sb.WriteString(gsURL[3 : colon+1])
		rest = gsURL[colon+1:]
	} else {
		sb.WriteString("https:")
		rest = gsURL[3:]
	}

	authority := strings.TrimLeft(rest, "/")
	sb.WriteString(rest[:len(rest)-len(authority)])

	bucketEnd := strings.IndexAny(authority, "/?#")
	if bucketEnd < 0 {
		bucketEnd = len(authority)
	}
	sb.WriteString(authority[:bucketEnd])

	switch hfile.Access(mode) {
	case hfile.AccessRead:
		sb.WriteString(downloadHostSuffix)
	case hfile.AccessWrite:
		sb.WriteString(uploadHostSuffix)
	default:
		sb.WriteString(genericHostSuffix)
	}
	sb.WriteString(domainSuffix)

	sb.WriteString(authority[bucketEnd:])
	return sb.String()
}
