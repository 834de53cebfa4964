package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartAndEndSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, ok := StartSpan(context.Background(), "communication.send", attribute.String("channel", "sms"))
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "communication.send")
	EndSpan(failed, errors.New("provider rejected"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}
	if spans[0].Status().Code == codes.Error {
		t.Fatal("expected first span to stay unset")
	}
	found := false
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "channel" && kv.Value.AsString() == "sms" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing channel attribute: %+v", spans[0].Attributes())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Fatalf("expected failed span with error event, got %+v", spans[1].Status())
	}
}
