package emit

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return exporter, NewOTelEmitter(otel.Tracer("test"))
}

func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestOTelEmitter_Emit(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		SessionID: "s-001",
		Step:      1,
		StageID:   "idea:seed",
		Msg:       "answer_stored",
		Meta: map[string]interface{}{
			"fields":   3,
			"shortcut": false,
			"latency":  250 * time.Millisecond,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name != "answer_stored" {
		t.Errorf("span name = %q, want %q", span.Name, "answer_stored")
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["magicprompt.session_id"]; got != "s-001" {
		t.Errorf("session_id = %v, want %q", got, "s-001")
	}
	if got := attrs["magicprompt.step"]; got != int64(1) {
		t.Errorf("step = %v, want %d", got, 1)
	}
	if got := attrs["magicprompt.stage_id"]; got != "idea:seed" {
		t.Errorf("stage_id = %v, want %q", got, "idea:seed")
	}
	if got := attrs["fields"]; got != int64(3) {
		t.Errorf("fields = %v, want 3", got)
	}
	if got := attrs["shortcut"]; got != false {
		t.Errorf("shortcut = %v, want false", got)
	}
	if got := attrs["latency_ms"]; got != int64(250) {
		t.Errorf("latency_ms = %v, want 250", got)
	}
}

func TestOTelEmitter_ErrorStatus(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		SessionID: "s-001",
		StageID:   "idea:seed",
		Msg:       "transform_failed",
		Meta: map[string]interface{}{
			"transform": "copy_field",
			"error":     "stage story:genre has no stored answer",
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", span.Status.Code)
	}
	if len(span.Events) == 0 {
		t.Error("expected a recorded error event on the span")
	}
}

func TestOTelEmitter_Flush(t *testing.T) {
	_, emitter := newTestTracer(t)

	emitter.Emit(Event{SessionID: "s-001", Msg: "session_reset"})
	if err := emitter.Flush(context.Background()); err != nil {
		t.Errorf("flush failed: %v", err)
	}
}
