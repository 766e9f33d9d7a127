package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("medscribe")

	if cfg.ServiceName != "medscribe" {
		t.Errorf("expected ServiceName 'medscribe', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("medscribe")

	if cfg.ServiceName != "medscribe" {
		t.Errorf("expected ServiceName 'medscribe', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordTranscription(ctx, "whisper", "ok", 100*time.Millisecond)
	metrics.RecordFallback(ctx, "rate_limit")
	metrics.RecordNoteGenerated(ctx, "ok")
	metrics.RecordRecording(ctx, 200000)
	metrics.RecordError(ctx, "provider", "transcription")
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanTranscribe)
	SetSpanAttribute(ctx, AttrProvider, "whisper")
	SetSpanAttribute(ctx, AttrAudioBytes, int64(200000))
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	ended := spans[0]
	if ended.Name() != SpanTranscribe {
		t.Errorf("span name = %s", ended.Name())
	}
	var sawProvider bool
	for _, attr := range ended.Attributes() {
		if string(attr.Key) == AttrProvider && attr.Value.AsString() == "whisper" {
			sawProvider = true
		}
	}
	if !sawProvider {
		t.Error("provider attribute not recorded")
	}
	if len(ended.Events()) == 0 {
		t.Error("expected recorded error event")
	}
}
