package project

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mxkacsa/execgraph/translator"
)

const instrumentationName = "github.com/mxkacsa/execgraph/project"

// Metric names.
const (
	MetricTranslations = "execgraph_translations_total"
	MetricDiagnostics  = "execgraph_diagnostics_total"
	MetricDuration     = "execgraph_translate_duration_seconds"
)

// SpanTranslate is the name of the span wrapping one translation.
const SpanTranslate = "Translator.Translate"

type instruments struct {
	translations metric.Int64Counter
	diagnostics  metric.Int64Counter
	duration     metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	var (
		inst instruments
		err  error
	)
	inst.translations, err = meter.Int64Counter(
		MetricTranslations,
		metric.WithDescription("Total number of graph translations"),
	)
	if err != nil {
		return nil, err
	}
	inst.diagnostics, err = meter.Int64Counter(
		MetricDiagnostics,
		metric.WithDescription("Total number of translation diagnostics by code"),
	)
	if err != nil {
		return nil, err
	}
	inst.duration, err = meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Duration of graph translations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// record records the metrics of one finished translation.
func (i *instruments) record(ctx context.Context, d time.Duration, res *translator.Result, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	i.translations.Add(ctx, 1, attrs)
	i.duration.Record(ctx, d.Seconds(), attrs)
	if res == nil {
		return
	}
	for _, diag := range res.Diagnostics {
		i.diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(diag.Code))))
	}
}

// startTranslateSpan creates a span for the translation of one job.
func startTranslateSpan(ctx context.Context, tracer trace.Tracer, job Job) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanTranslate,
		trace.WithAttributes(
			attribute.String("graph.name", job.Graph.FullName()),
			attribute.Int("graph.nodes", job.Graph.NodeCount()),
			attribute.String("graph.source", job.Source),
		),
	)
}

// setTranslateSpanResult sets the result attributes on a translation span.
func setTranslateSpanResult(span trace.Span, res *translator.Result, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("translate.states", res.States),
		attribute.Int("translate.moves", res.Moves),
		attribute.Int("translate.diagnostics", len(res.Diagnostics)),
	)
}
