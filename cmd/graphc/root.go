package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mxkacsa/execgraph/internal/config"
	"github.com/mxkacsa/execgraph/internal/ctxlog"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, cfg: config.Default()}

	root := &cobra.Command{
		Use:           "graphc",
		Short:         "Translate execution graphs into C# method bodies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultFile, "configuration file")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	root.AddCommand(
		newTranslateCmd(a),
		newValidateCmd(a),
		newKindsCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and installs the
// logger in the command context.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(a.configPath, !flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = newLogger(cfg.Log.Level, cfg.Log.Format, a.stderr)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), a.logger))
	a.logger.Debug("configuration loaded", "path", a.configPath)
	return nil
}

// newLogger creates a logger writing to w. It does not touch the global
// logger.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
