// Package project translates many graphs at once.
//
// Each job runs on its own goroutine with its own Translator. Graphs are
// only read, so a graph must not be changed while a batch is running.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/internal/ctxlog"
	"github.com/mxkacsa/execgraph/translator"
)

// Job is one graph to translate.
type Job struct {
	Graph  *graph.Graph
	Source string // file the graph was loaded from, if any
}

// Output is the outcome of one job. Exactly one of Result and Err is set.
type Output struct {
	Job      Job
	Result   *translator.Result
	Err      error
	Duration time.Duration
}

// Options configures TranslateAll.
type Options struct {
	// Parallelism caps the number of concurrent translations. Zero or less
	// means GOMAXPROCS.
	Parallelism int

	// FailFast stops the batch at the first failed job. Jobs that have not
	// started by then are skipped.
	FailFast bool

	// WithSignature prefixes every output with its method signature.
	WithSignature bool

	// Translator options applied to every per-job Translator. The logger
	// from the context is applied first and may be overridden here.
	Translator []translator.Option

	// Telemetry providers. Nil means the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	return o
}

type runner struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
	inst   *instruments
}

// TranslateAll translates every job and returns the outputs in job order.
//
// Without FailFast a failed job is reported in its Output and the returned
// error is nil unless ctx ends before every job has run. With FailFast the
// first failure is returned and the remaining jobs are skipped.
func TranslateAll(ctx context.Context, jobs []Job, opts Options) ([]Output, error) {
	opts = opts.withDefaults()
	inst, err := newInstruments(opts.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	r := &runner{
		opts:   opts,
		logger: ctxlog.FromContext(ctx),
		tracer: opts.TracerProvider.Tracer(instrumentationName),
		inst:   inst,
	}

	outputs := make([]Output, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	r.logger.Debug("translating graphs", "jobs", len(jobs), "parallelism", opts.Parallelism, "fail_fast", opts.FailFast)
	for i, job := range jobs {
		outputs[i].Job = job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outputs[i].Err = err
				return nil
			}
			outputs[i] = r.run(gctx, job)
			if outputs[i].Err != nil && opts.FailFast {
				return outputs[i].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outputs, err
	}
	if err := ctx.Err(); err != nil {
		return outputs, err
	}
	return outputs, nil
}

func (r *runner) run(ctx context.Context, job Job) Output {
	ctx, span := startTranslateSpan(ctx, r.tracer, job)
	defer span.End()

	logger := r.logger.With("graph", job.Graph.FullName())
	opts := append([]translator.Option{translator.WithLogger(logger)}, r.opts.Translator...)
	tr := translator.New(opts...)

	start := time.Now()
	res, err := tr.Translate(job.Graph, r.opts.WithSignature)
	d := time.Since(start)

	setTranslateSpanResult(span, res, err)
	r.inst.record(ctx, d, res, err)

	if err != nil {
		logger.Warn("translation failed", "source", job.Source, "error", err)
	} else {
		logger.Debug("translation finished", "duration", d, "diagnostics", len(res.Diagnostics))
	}
	return Output{Job: job, Result: res, Err: err, Duration: d}
}

// Jobs wraps graphs loaded from source into jobs.
func Jobs(source string, graphs ...*graph.Graph) []Job {
	jobs := make([]Job, len(graphs))
	for i, g := range graphs {
		jobs[i] = Job{Graph: g, Source: source}
	}
	return jobs
}
