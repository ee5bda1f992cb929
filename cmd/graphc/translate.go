package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mxkacsa/execgraph/internal/config"
	"github.com/mxkacsa/execgraph/internal/ctxlog"
	"github.com/mxkacsa/execgraph/parse"
	"github.com/mxkacsa/execgraph/project"
	"github.com/mxkacsa/execgraph/translator"
	"github.com/mxkacsa/execgraph/translator/debug"
)

func newTranslateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [files or directories...]",
		Short: "Translate graph documents",
		Long: "Translate every graph in the given documents. Each graph is written to\n" +
			"<Class>.<Name>.cs in the output directory, or to standard output when no\n" +
			"directory is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyTranslateFlags(cmd, &a.cfg.Translate)
			return a.translate(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory")
	f.Bool("signature", true, "write the method signature above each body")
	f.Uint64("seed", 0, "seed for temporary variable names")
	f.Int("parallel", 0, "concurrent translations (0 uses every CPU)")
	f.Bool("fail-fast", false, "stop at the first failed graph")
	f.Bool("trace", false, "print translation spans to stderr")
	f.String("debug-trace", "", `print node emission events to stderr as "text" or "json"`)
	return cmd
}

// applyTranslateFlags overrides the configuration with the flags that were
// set on the command line.
func applyTranslateFlags(cmd *cobra.Command, cfg *config.TranslateConfig) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputDir, _ = f.GetString("output")
	}
	if f.Changed("signature") {
		cfg.Signature, _ = f.GetBool("signature")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("parallel") {
		cfg.Parallelism, _ = f.GetInt("parallel")
	}
	if f.Changed("fail-fast") {
		cfg.FailFast, _ = f.GetBool("fail-fast")
	}
	if f.Changed("trace") {
		cfg.Trace, _ = f.GetBool("trace")
	}
	if f.Changed("debug-trace") {
		cfg.DebugTrace, _ = f.GetString("debug-trace")
	}
}

func (a *app) translate(ctx context.Context, paths []string) (err error) {
	logger := ctxlog.FromContext(ctx)
	cfg := a.cfg.Translate

	if err := config.ValidateDebugTrace(cfg.DebugTrace); err != nil {
		return err
	}
	docs, err := parse.NewLoader(nil).LoadDocuments(ctx, paths...)
	if err != nil {
		return err
	}
	var jobs []project.Job
	for _, d := range docs {
		jobs = append(jobs, project.Jobs(d.Path, d.Graphs...)...)
	}
	if len(jobs) == 0 {
		return errors.New("no graphs found")
	}

	opts := project.Options{
		Parallelism:   cfg.Parallelism,
		FailFast:      cfg.FailFast,
		WithSignature: cfg.Signature,
		Translator:    []translator.Option{translator.WithSeed(cfg.Seed)},
	}
	if cfg.Trace {
		tp, terr := a.newTracerProvider()
		if terr != nil {
			return terr
		}
		defer func() {
			if serr := tp.Shutdown(context.WithoutCancel(ctx)); serr != nil && err == nil {
				err = fmt.Errorf("failed to flush spans: %w", serr)
			}
		}()
		opts.TracerProvider = tp
	}
	switch cfg.DebugTrace {
	case "text":
		opts.Translator = append(opts.Translator, translator.WithHook(debug.NewPrintHook(a.stderr)))
	case "json":
		opts.Translator = append(opts.Translator, translator.WithHook(debug.NewWriterHook(a.stderr)))
	}

	outputs, err := project.TranslateAll(ctx, jobs, opts)
	if err != nil && cfg.FailFast {
		return err
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var failed []error
	for i, out := range outputs {
		name := out.Job.Graph.FullName()
		if out.Err != nil {
			failed = append(failed, out.Err)
			continue
		}
		for _, d := range out.Result.Diagnostics {
			logger.Warn("diagnostic", "graph", name, "code", string(d.Code), "kind", d.Kind, "message", d.Message)
		}
		if cfg.OutputDir == "" {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprint(a.stdout, out.Result.Code)
			continue
		}
		path := filepath.Join(cfg.OutputDir, name+".cs")
		if err := os.WriteFile(path, []byte(out.Result.Code), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("wrote graph", "graph", name, "path", path)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d graphs failed:\n%w", len(failed), len(outputs), errors.Join(failed...))
	}
	return nil
}

func (a *app) newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(a.stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", "graphc"),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
