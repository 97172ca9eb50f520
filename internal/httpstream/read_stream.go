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
	"strconv"
	"strings"

	"github.com/googlecloudplatform/gcsstream/internal/ratelimit"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"google.golang.org/api/googleapi"
)

var (
	// ErrReadOnly is returned when writing to a stream opened for reading.
	ErrReadOnly = errors.New("stream is open for reading")

	// ErrClosed is returned by operations on a closed stream.
	ErrClosed = errors.New("stream is closed")
)

// readStream serves a GET response body. Seeking drops the body; the next read
// re-requests from the new offset with a Range header.
type readStream struct {
	ctx    context.Context
	opener *Opener
	url    string
	header http.Header

	body   io.ReadCloser
	reader io.Reader

	// Current position, in bytes from the start of the object.
	offset int64

	// Object size, or -1 while unknown.
	size int64

	closed bool
}

func (o *Opener) openRead(ctx context.Context, url string, header http.Header) (*readStream, error) {
	rs := &readStream{
		ctx:    ctx,
		opener: o,
		url:    url,
		header: header,
		size:   -1,
	}
	if err := rs.fetch(); err != nil {
		return nil, err
	}
	return rs, nil
}

// fetch issues a GET starting at rs.offset.
func (rs *readStream) fetch() error {
	if rs.size >= 0 && rs.offset >= rs.size {
		rs.setBody(http.NoBody)
		return nil
	}

	resp, err := rs.opener.do(rs.ctx, metrics.HttpMethodGet, rs.url, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rs.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header = rs.header.Clone()
		if rs.offset > 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", rs.offset))
		}
		return req, nil
	})

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusRequestedRangeNotSatisfiable {
		// Seeking to or past the end reads nothing.
		rs.setBody(http.NoBody)
		return nil
	}
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if size, ok := parseContentRangeSize(resp.Header.Get("Content-Range")); ok {
			rs.size = size
		}
	default:
		if resp.ContentLength >= 0 {
			rs.size = resp.ContentLength
		}
		// The server ignored the range; skip to the requested offset.
		if rs.offset > 0 {
			if _, err := io.CopyN(io.Discard, resp.Body, rs.offset); err != nil {
				resp.Body.Close()
				return fmt.Errorf("skipping to offset %d of %s: %w", rs.offset, rs.url, err)
			}
		}
	}

	rs.setBody(resp.Body)
	return nil
}

func (rs *readStream) setBody(body io.ReadCloser) {
	rs.body = body
	rs.reader = body
	if rs.opener.config.Throttle != nil {
		rs.reader = ratelimit.ThrottledReader(rs.ctx, body, rs.opener.config.Throttle)
	}
}

// parseContentRangeSize extracts the complete length from a header such as
// "bytes 100-199/1234".
func parseContentRangeSize(v string) (int64, bool) {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return 0, false
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}

func (rs *readStream) Read(p []byte) (int, error) {
	if rs.closed {
		return 0, ErrClosed
	}
	if rs.body == nil {
		if err := rs.fetch(); err != nil {
			return 0, err
		}
	}

	n, err := rs.reader.Read(p)
	rs.offset += int64(n)
	if n > 0 {
		rs.opener.config.MetricHandle.ReadBytesCount(int64(n))
	}
	return n, err
}

func (rs *readStream) Seek(offset int64, whence int) (int64, error) {
	if rs.closed {
		return 0, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = rs.offset + offset
	case io.SeekEnd:
		if rs.size < 0 {
			return 0, fmt.Errorf("seek from end of %s: size unknown", rs.url)
		}
		abs = rs.size + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}

	if abs == rs.offset {
		return abs, nil
	}

	if rs.body != nil {
		rs.body.Close()
		rs.body = nil
		rs.reader = nil
	}
	rs.offset = abs
	return abs, nil
}

func (rs *readStream) Write([]byte) (int, error) {
	return 0, ErrReadOnly
}

func (rs *readStream) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	if rs.body != nil {
		rs.body.Close()
		rs.body = nil
	}
	return nil
}
