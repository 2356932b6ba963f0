package inventory

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// ledgerMetrics contadores del libro de movimentações.
type ledgerMetrics struct {
	opened         metric.Int64Counter
	finalized      metric.Int64Counter
	cancelled      metric.Int64Counter
	stockRejected  metric.Int64Counter
	linkCollisions metric.Int64Counter
}

func newLedgerMetrics(meter metric.Meter) *ledgerMetrics {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			return metricnoop.Int64Counter{}
		}
		return c
	}
	return &ledgerMetrics{
		opened:         counter("ledger.movements.opened", "movimentações abiertas"),
		finalized:      counter("ledger.movements.finalized", "movimentações cerradas"),
		cancelled:      counter("ledger.movements.cancelled", "movimentações canceladas"),
		stockRejected:  counter("ledger.finalize.insufficient_stock", "cierres rechazados por stock insuficiente"),
		linkCollisions: counter("ledger.links.collisions", "colisiones de link al abrir"),
	}
}

func typeAttr(movementType string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("movement.type", movementType))
}

func startSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
