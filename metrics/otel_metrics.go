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
	"errors"
	"sync/atomic"
	"time"

	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every instrument created here.
const MeterName = "gcsstream"

var (
	tokenFetchCountStatusSuccessAttrSet   = metric.WithAttributeSet(attribute.NewSet(attribute.String("status", string(TokenFetchStatusSuccess))))
	tokenFetchCountStatusFailureAttrSet   = metric.WithAttributeSet(attribute.NewSet(attribute.String("status", string(TokenFetchStatusFailure))))
	tokenFetchCountStatusOversizedAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("status", string(TokenFetchStatusOversized))))

	accessModeReadAttrSet  = metric.WithAttributeSet(attribute.NewSet(attribute.String("access_mode", string(AccessModeRead))))
	accessModeWriteAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("access_mode", string(AccessModeWrite))))
	accessModeOtherAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("access_mode", string(AccessModeOther))))

	httpMethodGetAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("http_method", string(HttpMethodGet))))
	httpMethodPutAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("http_method", string(HttpMethodPut))))
)

type accessModeCounter struct {
	read, write, other atomic.Int64
}

func (c *accessModeCounter) add(inc int64, accessMode AccessMode) {
	switch accessMode {
	case AccessModeRead:
		c.read.Add(inc)
	case AccessModeWrite:
		c.write.Add(inc)
	default:
		c.other.Add(inc)
	}
}

func (c *accessModeCounter) observe(obsrv metric.Int64Observer) {
	conditionallyObserve(obsrv, &c.read, accessModeReadAttrSet)
	conditionallyObserve(obsrv, &c.write, accessModeWriteAttrSet)
	conditionallyObserve(obsrv, &c.other, accessModeOtherAttrSet)
}

type otelMetrics struct {
	tokenFetchCountSuccessAtomic   atomic.Int64
	tokenFetchCountFailureAtomic   atomic.Int64
	tokenFetchCountOversizedAtomic atomic.Int64
	tokenFetchLatencies            metric.Int64Histogram

	streamOpenCount      accessModeCounter
	streamOpenErrorCount accessModeCounter

	httpRequestCountGetAtomic atomic.Int64
	httpRequestCountPutAtomic atomic.Int64
	httpRequestLatencies      metric.Int64Histogram
	httpRetryCountAtomic      atomic.Int64

	readBytesCountAtomic  atomic.Int64
	writeBytesCountAtomic atomic.Int64
}

// NewOTelMetrics creates the instruments on the global meter provider. The
// exporters must be installed before calling it for the values to be exported.
func NewOTelMetrics() (*otelMetrics, error) {
	meter := otel.Meter(MeterName)
	o := &otelMetrics{}

	_, err0 := meter.Int64ObservableCounter("auth/token_fetch_count",
		metric.WithDescription("The cumulative number of access token fetches from the credential source."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &o.tokenFetchCountSuccessAtomic, tokenFetchCountStatusSuccessAttrSet)
			conditionallyObserve(obsrv, &o.tokenFetchCountFailureAtomic, tokenFetchCountStatusFailureAttrSet)
			conditionallyObserve(obsrv, &o.tokenFetchCountOversizedAtomic, tokenFetchCountStatusOversizedAttrSet)
			return nil
		}))

	tokenFetchLatencies, err1 := meter.Int64Histogram("auth/token_fetch_latencies",
		metric.WithDescription("The cumulative distribution of access token fetch latencies."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000))

	_, err2 := meter.Int64ObservableCounter("stream/open_count",
		metric.WithDescription("The cumulative number of gs:// streams opened."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			o.streamOpenCount.observe(obsrv)
			return nil
		}))

	_, err3 := meter.Int64ObservableCounter("stream/open_error_count",
		metric.WithDescription("The cumulative number of gs:// stream opens that failed."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			o.streamOpenErrorCount.observe(obsrv)
			return nil
		}))

	_, err4 := meter.Int64ObservableCounter("http/request_count",
		metric.WithDescription("The cumulative number of HTTP requests made by the stream opener."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &o.httpRequestCountGetAtomic, httpMethodGetAttrSet)
			conditionallyObserve(obsrv, &o.httpRequestCountPutAtomic, httpMethodPutAttrSet)
			return nil
		}))

	httpRequestLatencies, err5 := meter.Int64Histogram("http/request_latencies",
		metric.WithDescription("The cumulative distribution of HTTP request latencies."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(50, 100, 150, 200, 300, 400, 500, 700, 1000, 2000, 5000, 7000, 10000, 20000, 50000, 100000, 200000, 500000))

	_, err6 := meter.Int64ObservableCounter("http/retry_count",
		metric.WithDescription("The cumulative number of retried HTTP requests."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &o.httpRetryCountAtomic)
			return nil
		}))

	_, err7 := meter.Int64ObservableCounter("stream/read_bytes_count",
		metric.WithDescription("The cumulative number of bytes read from HTTP streams."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &o.readBytesCountAtomic)
			return nil
		}))

	_, err8 := meter.Int64ObservableCounter("stream/write_bytes_count",
		metric.WithDescription("The cumulative number of bytes written to HTTP streams."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &o.writeBytesCountAtomic)
			return nil
		}))

	if err := errors.Join(err0, err1, err2, err3, err4, err5, err6, err7, err8); err != nil {
		return nil, err
	}
	o.tokenFetchLatencies = tokenFetchLatencies
	o.httpRequestLatencies = httpRequestLatencies
	return o, nil
}

func (o *otelMetrics) TokenFetchCount(inc int64, status TokenFetchStatus) {
	if inc < 0 {
		logger.Errorf("Counter metric auth/token_fetch_count received a negative increment: %d", inc)
		return
	}
	switch status {
	case TokenFetchStatusSuccess:
		o.tokenFetchCountSuccessAtomic.Add(inc)
	case TokenFetchStatusOversized:
		o.tokenFetchCountOversizedAtomic.Add(inc)
	default:
		o.tokenFetchCountFailureAtomic.Add(inc)
	}
}

func (o *otelMetrics) TokenFetchLatencies(ctx context.Context, latency time.Duration) {
	o.tokenFetchLatencies.Record(ctx, latency.Milliseconds())
}

func (o *otelMetrics) StreamOpenCount(inc int64, accessMode AccessMode) {
	if inc < 0 {
		logger.Errorf("Counter metric stream/open_count received a negative increment: %d", inc)
		return
	}
	o.streamOpenCount.add(inc, accessMode)
}

func (o *otelMetrics) StreamOpenErrorCount(inc int64, accessMode AccessMode) {
	if inc < 0 {
		logger.Errorf("Counter metric stream/open_error_count received a negative increment: %d", inc)
		return
	}
	o.streamOpenErrorCount.add(inc, accessMode)
}

func (o *otelMetrics) HttpRequestCount(inc int64, method HttpMethod) {
	if inc < 0 {
		logger.Errorf("Counter metric http/request_count received a negative increment: %d", inc)
		return
	}
	switch method {
	case HttpMethodGet:
		o.httpRequestCountGetAtomic.Add(inc)
	case HttpMethodPut:
		o.httpRequestCountPutAtomic.Add(inc)
	default:
		logger.Warnf("Unrecognized http_method %q for http/request_count", method)
	}
}

func (o *otelMetrics) HttpRequestLatencies(ctx context.Context, latency time.Duration, method HttpMethod) {
	switch method {
	case HttpMethodGet:
		o.httpRequestLatencies.Record(ctx, latency.Milliseconds(), httpMethodGetAttrSet)
	case HttpMethodPut:
		o.httpRequestLatencies.Record(ctx, latency.Milliseconds(), httpMethodPutAttrSet)
	default:
		logger.Warnf("Unrecognized http_method %q for http/request_latencies", method)
	}
}

func (o *otelMetrics) HttpRetryCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric http/retry_count received a negative increment: %d", inc)
		return
	}
	o.httpRetryCountAtomic.Add(inc)
}

func (o *otelMetrics) ReadBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric stream/read_bytes_count received a negative increment: %d", inc)
		return
	}
	o.readBytesCountAtomic.Add(inc)
}

func (o *otelMetrics) WriteBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric stream/write_bytes_count received a negative increment: %d", inc)
		return
	}
	o.writeBytesCountAtomic.Add(inc)
}

func conditionallyObserve(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	if val := counter.Load(); val > 0 {
		obsrv.Observe(val, obsrvOptions...)
	}
}
