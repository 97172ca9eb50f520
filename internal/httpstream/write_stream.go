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
	"sync"

	"github.com/google/uuid"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/googlecloudplatform/gcsstream/metrics"
	"github.com/googlecloudplatform/gcsstream/tracing"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
)

// ErrWriteOnly is returned when reading from a stream opened for writing.
var ErrWriteOnly = errors.New("stream is open for writing")

// writeStream uploads everything written to it as the body of a single PUT.
// The request runs in the background; Close ends the body and waits for the
// response.
type writeStream struct {
	url          string
	pw           *io.PipeWriter
	metricHandle metrics.MetricHandle

	// Bytes accepted so far.
	written int64

	done chan struct{}

	// Set before done is closed.
	err error

	closeOnce sync.Once
	closeErr  error
}

func (o *Opener) openWrite(ctx context.Context, url string, header http.Header) (*writeStream, error) {
	pr, pw := io.Pipe()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, pr)
	if err != nil {
		return nil, err
	}
	req.Header = header

	ws := &writeStream{url: url, pw: pw, metricHandle: o.config.MetricHandle, done: make(chan struct{})}
	go ws.upload(ctx, o, req, pr)
	return ws, nil
}

func (ws *writeStream) upload(ctx context.Context, o *Opener, req *http.Request, pr *io.PipeReader) {
	defer close(ws.done)

	ctx, span := o.config.TraceHandle.StartClientSpan(ctx, tracing.HttpRequest)
	defer o.config.TraceHandle.EndSpan(span)
	requestID := uuid.NewString()
	o.config.TraceHandle.SetAttributes(span,
		attribute.String("http.method", http.MethodPut),
		attribute.String("request_id", requestID))

	logger.Tracef("httpstream: <- %s (%s, %s)", metrics.HttpMethodPut, ws.url, requestID)
	start := timeNow()
	resp, err := o.client.Do(req.WithContext(ctx))
	o.config.MetricHandle.HttpRequestCount(1, metrics.HttpMethodPut)
	o.config.MetricHandle.HttpRequestLatencies(ctx, timeNow().Sub(start), metrics.HttpMethodPut)
	if err == nil {
		err = googleapi.CheckResponse(resp)
		drainAndClose(resp.Body)
	}

	if err != nil {
		logger.Tracef("httpstream: -> %s error (%s): %v", metrics.HttpMethodPut, requestID, err)
		o.config.TraceHandle.RecordError(span, err)
		ws.err = fmt.Errorf("uploading %s: %w", ws.url, err)
		// Unblock writers still feeding the request body.
		pr.CloseWithError(ws.err)
		return
	}
	logger.Tracef("httpstream: -> %s %s (%s)", metrics.HttpMethodPut, resp.Status, requestID)
	pr.Close()
}

func (ws *writeStream) Write(p []byte) (int, error) {
	n, err := ws.pw.Write(p)
	ws.written += int64(n)
	if n > 0 {
		ws.metricHandle.WriteBytesCount(int64(n))
	}
	return n, err
}

func (ws *writeStream) Read([]byte) (int, error) {
	return 0, ErrWriteOnly
}

// Seek only reports the current position; uploads cannot be rewound.
func (ws *writeStream) Seek(offset int64, whence int) (int64, error) {
	if offset == 0 && whence == io.SeekCurrent {
		return ws.written, nil
	}
	return 0, fmt.Errorf("seek on upload stream %s is not supported", ws.url)
}

func (ws *writeStream) Close() error {
	ws.closeOnce.Do(func() {
		ws.pw.Close()
		<-ws.done
		ws.closeErr = ws.err
	})
	return ws.closeErr
}
