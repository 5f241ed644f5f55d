package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of business spans.
const TracerName = "krisi"

// Span attribute keys shared by the services
const (
	SpanAttrProductID = "product_id"
	SpanAttrOrderID   = "order_id"
	SpanAttrPaymentID = "payment_id"
	SpanAttrActorID   = "actor_id"
	SpanAttrActorRole = "actor_role"
	SpanAttrStatus    = "status"
	SpanAttrQuantity  = "quantity"
)

// StartServiceSpan opens "<service>.<method>" with alternating key/value
// attributes. The caller ends the span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "order", "advance_status",
//		telemetry.SpanAttrOrderID, id)
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, kv ...any) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs(kv)...),
	)
}

// SetAttributes, RecordError and AddEvent accept a nil span.

func SetAttributes(span trace.Span, kv ...any) {
	if span != nil {
		span.SetAttributes(attrs(kv)...)
	}
}

// RecordError marks the span failed with err. Domain errors such as
// INSUFFICIENT_STOCK are recorded too; the status message carries the code.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func AddEvent(span trace.Span, name string, kv ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attrs(kv)...))
	}
}

// GetTraceID returns the hex trace ID active in ctx, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// attrs pairs up kv, skipping non-string keys and a trailing odd value.
func attrs(kv []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		if key, ok := kv[i-1].(string); ok {
			out = append(out, attr(key, kv[i]))
		}
	}
	return out
}

func attr(key string, value any) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	}
	return k.String(fmt.Sprint(value))
}
