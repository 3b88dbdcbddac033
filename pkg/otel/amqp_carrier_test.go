package otel

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestInjectAMQP_RoundTrip(t *testing.T) {
	//Arrange
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0xa, 0xb},
		SpanID:     trace.SpanID{0xc},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	//Act
	headers := InjectAMQP(ctx)
	headers["x-retry"] = int32(2)
	extracted := otel.GetTextMapPropagator().Extract(context.Background(), propagation.MapCarrier(AMQPHeadersCarrier(headers).Strings()))

	//Assert
	assert.Contains(t, headers, "traceparent")
	got := trace.SpanContextFromContext(extracted)
	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.Equal(t, sc.SpanID(), got.SpanID())
}

func TestAMQPHeadersCarrier_IgnoresNonStrings(t *testing.T) {
	//Arrange
	c := AMQPHeadersCarrier(amqp.Table{"a": "1", "b": int64(2)})

	//Act & Assert
	assert.Equal(t, "1", c.Get("a"))
	assert.Empty(t, c.Get("b"))
	assert.Equal(t, map[string]string{"a": "1"}, c.Strings())
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Nil(t, AMQPHeadersCarrier(nil).Strings())
}
