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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		url  string
		mode string
		want string
	}{
		{name: "read", url: "gs://bucket/path/to/obj", mode: "r", want: "https://bucket.storage-download.googleapis.com/path/to/obj"},
		{name: "write", url: "gs://bucket/path/to/obj", mode: "w", want: "https://bucket.storage-upload.googleapis.com/path/to/obj"},
		{name: "other", url: "gs://bucket/path/to/obj", mode: "a", want: "https://bucket.storage.googleapis.com/path/to/obj"},
		{name: "empty_mode", url: "gs://bucket/obj", mode: "", want: "https://bucket.storage.googleapis.com/obj"},
		{name: "read_wins_over_write", url: "gs://bucket/obj", mode: "rw", want: "https://bucket.storage-download.googleapis.com/obj"},
		{name: "mode_with_options", url: "gs://bucket/obj", mode: "w:", want: "https://bucket.storage-upload.googleapis.com/obj"},
		{name: "bucket_only", url: "gs://bucket", mode: "r", want: "https://bucket.storage-download.googleapis.com"},
		{name: "bucket_trailing_slash", url: "gs://bucket/", mode: "r", want: "https://bucket.storage-download.googleapis.com/"},
		{name: "bucket_query", url: "gs://bucket?alt=media", mode: "r", want: "https://bucket.storage-download.googleapis.com?alt=media"},
		{name: "bucket_fragment", url: "gs://bucket#frag", mode: "r", want: "https://bucket.storage-download.googleapis.com#frag"},
		{name: "path_query_fragment", url: "gs://bucket/a/b.bam?generation=12#x", mode: "r", want: "https://bucket.storage-download.googleapis.com/a/b.bam?generation=12#x"},
		{name: "gs_plus_http", url: "gs+http://bucket/obj", mode: "r", want: "http://bucket.storage-download.googleapis.com/obj"},
		{name: "gs_plus_https", url: "gs+https://bucket/obj", mode: "w", want: "https://bucket.storage-upload.googleapis.com/obj"},
		{name: "gs_plus_other_scheme", url: "gs+ftp://bucket/obj", mode: "", want: "ftp://bucket.storage.googleapis.com/obj"},
		{name: "triple_slash", url: "gs:///bucket/path", mode: "r", want: "https:///bucket.storage-download.googleapis.com/path"},
		{name: "no_slashes", url: "gs:bucket/path", mode: "r", want: "https:bucket.storage-download.googleapis.com/path"},
		{name: "missing_bucket", url: "gs:///", mode: "r", want: "https:///.storage-download.googleapis.com"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rewrite(tc.url, tc.mode))
		})
	}
}

func TestIsGCSURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "gs://bucket/obj", want: true},
		{url: "GS://bucket/obj", want: true},
		{url: "gs+http://bucket/obj", want: true},
		{url: "gs:bucket", want: true},
		{url: "gs+://bucket", want: false},
		{url: "gsx://bucket", want: false},
		{url: "s3://bucket", want: false},
		{url: "gs", want: false},
		{url: "gs+http", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, IsGCSURL(tc.url))
		})
	}
}
