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

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestOTelTracer_StartAndEndSpan(t *testing.T) {
	recorder := setupRecorder(t)
	th := NewOTelTracer()

	_, span := th.StartSpan(context.Background(), FetchToken)
	th.SetAttributes(span, attribute.String("source", "helper"))
	th.EndSpan(span)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, FetchToken, ended[0].Name())
	assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())
	assert.Contains(t, ended[0].Attributes(), attribute.String("source", "helper"))
}

func TestOTelTracer_ClientSpanIsChildOfParent(t *testing.T) {
	recorder := setupRecorder(t)
	th := NewOTelTracer()

	ctx, parent := th.StartSpan(context.Background(), OpenGCS)
	_, child := th.StartClientSpan(ctx, HttpRequest)
	th.EndSpan(child)
	th.EndSpan(parent)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, HttpRequest, ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestOTelTracer_RecordError(t *testing.T) {
	recorder := setupRecorder(t)
	th := NewOTelTracer()

	_, span := th.StartSpan(context.Background(), FetchToken)
	th.RecordError(span, errors.New("helper failed"))
	th.EndSpan(span)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "helper failed", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestOTelTracer_RecordNilErrorIsIgnored(t *testing.T) {
	recorder := setupRecorder(t)
	th := NewOTelTracer()

	_, span := th.StartSpan(context.Background(), FetchToken)
	th.RecordError(span, nil)
	th.EndSpan(span)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}

func TestNoopTracer_ReturnsSameContext(t *testing.T) {
	th := NewNoopTracer()
	ctx := context.Background()

	newCtx, span := th.StartSpan(ctx, OpenGCS)

	assert.Equal(t, ctx, newCtx)
	assert.False(t, span.SpanContext().IsValid())
}
