package project

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/translator"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	opts   Options
}

func newTelemetry(t *testing.T) *telemetry {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return &telemetry{
		spans:  spans,
		reader: reader,
		opts:   Options{TracerProvider: tp, MeterProvider: mp},
	}
}

func (tel *telemetry) metric(t *testing.T, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tel.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return nil
}

func sum(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	s, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "aggregation is %T", agg)
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

// printGraph prints its message once.
func printGraph(name, message string) *graph.Graph {
	g := graph.New(name, "Batch")
	def, _ := translator.DefaultRegistry().Lookup(translator.NodePrint)
	pr := g.AddCustom(translator.NodePrint, def.Ports, nil)
	g.SetUnconnectedValue(g.In(pr, "message"), cty.StringVal(message))
	g.MustConnect(g.Entry().OutExec[0], pr.InExec[0])
	return g
}

// brokenGraph has a branch whose condition is unconnected.
func brokenGraph(name string) *graph.Graph {
	g := graph.New(name, "Batch")
	br := g.AddBranch()
	g.MustConnect(g.Entry().OutExec[0], br.InExec[0])
	return g
}

// mysteryGraph contains one unregistered custom node.
func mysteryGraph(name string) *graph.Graph {
	g := graph.New(name, "Batch")
	n := g.AddCustom("Mystery", []graph.PortSpec{
		{Name: "exec", Channel: graph.Exec, Direction: graph.In},
		{Name: "exec", Channel: graph.Exec, Direction: graph.Out},
	}, nil)
	g.MustConnect(g.Entry().OutExec[0], n.InExec[0])
	return g
}

func TestTranslateAll_KeepsJobOrder(t *testing.T) {
	tel := newTelemetry(t)
	var jobs []Job
	for i := range 20 {
		jobs = append(jobs, Job{Graph: printGraph(fmt.Sprintf("P%d", i), fmt.Sprintf("m%d", i)), Source: "mem"})
	}
	opts := tel.opts
	opts.Parallelism = 4

	outputs, err := TranslateAll(context.Background(), jobs, opts)
	require.NoError(t, err)
	require.Len(t, outputs, len(jobs))
	for i, out := range outputs {
		require.NoError(t, out.Err)
		assert.Same(t, jobs[i].Graph, out.Job.Graph)
		assert.Contains(t, out.Result.Code, fmt.Sprintf("System.Console.WriteLine(\"m%d\");", i))
	}

	spans := tel.spans.Ended()
	require.Len(t, spans, len(jobs))
	for _, s := range spans {
		assert.Equal(t, SpanTranslate, s.Name())
	}
	assert.Equal(t, int64(len(jobs)), sum(t, tel.metric(t, MetricTranslations)))

	hist, ok := tel.metric(t, MetricDuration).(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(len(jobs)), count)
}

func TestTranslateAll_RecordsFailuresPerJob(t *testing.T) {
	tel := newTelemetry(t)
	jobs := Jobs("mem", printGraph("A", "a"), brokenGraph("B"), printGraph("C", "c"))

	outputs, err := TranslateAll(context.Background(), jobs, tel.opts)
	require.NoError(t, err)

	assert.NoError(t, outputs[0].Err)
	assert.ErrorIs(t, outputs[1].Err, translator.ErrUnconnectedRequiredInput)
	assert.Nil(t, outputs[1].Result)
	assert.NoError(t, outputs[2].Err)

	var failed int
	for _, s := range tel.spans.Ended() {
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestTranslateAll_FailFast(t *testing.T) {
	tel := newTelemetry(t)
	jobs := Jobs("mem", brokenGraph("A"), printGraph("B", "b"), printGraph("C", "c"))
	opts := tel.opts
	opts.Parallelism = 1
	opts.FailFast = true

	outputs, err := TranslateAll(context.Background(), jobs, opts)
	require.ErrorIs(t, err, translator.ErrUnconnectedRequiredInput)
	require.Len(t, outputs, 3)
	assert.ErrorIs(t, outputs[0].Err, translator.ErrUnconnectedRequiredInput)
	for _, out := range outputs[1:] {
		assert.ErrorIs(t, out.Err, context.Canceled)
		assert.Nil(t, out.Result)
	}
	assert.Len(t, tel.spans.Ended(), 1)
}

func TestTranslateAll_CancelledContext(t *testing.T) {
	tel := newTelemetry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outputs, err := TranslateAll(ctx, Jobs("mem", printGraph("A", "a"), printGraph("B", "b")), tel.opts)
	require.True(t, errors.Is(err, context.Canceled))
	for _, out := range outputs {
		assert.ErrorIs(t, out.Err, context.Canceled)
	}
	assert.Empty(t, tel.spans.Ended())
}

func TestTranslateAll_CountsDiagnostics(t *testing.T) {
	tel := newTelemetry(t)
	outputs, err := TranslateAll(context.Background(), Jobs("mem", mysteryGraph("M"), mysteryGraph("N")), tel.opts)
	require.NoError(t, err)
	for _, out := range outputs {
		require.NoError(t, out.Err)
		require.Len(t, out.Result.Diagnostics, 1)
	}
	assert.Equal(t, int64(2), sum(t, tel.metric(t, MetricDiagnostics)))
}

func TestTranslateAll_TranslatorOptions(t *testing.T) {
	tel := newTelemetry(t)
	opts := tel.opts
	opts.WithSignature = true
	opts.Translator = []translator.Option{translator.WithRegistry(translator.NewRegistry())}

	outputs, err := TranslateAll(context.Background(), Jobs("mem", printGraph("P", "p")), opts)
	require.NoError(t, err)
	code := outputs[0].Result.Code
	assert.Contains(t, code, "// Batch.P\n")
	assert.Contains(t, code, "// Unknown node kind: Print")
}

func TestTranslateAll_Empty(t *testing.T) {
	outputs, err := TranslateAll(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, outputs)
}
