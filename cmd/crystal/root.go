package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"crystal-hq/crystal/pkg/cli"
	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/telemetry/logging"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "crystal.yaml"

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "crystal/no-config"

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
	noColor   bool
)

// state is set up before every command that loads configuration.
var state struct {
	cfg     *config.Config
	cfgPath string
	logger  *logging.Logger
}

var rootCmd = &cobra.Command{
	Use:   "crystal",
	Short: "Crystal - search query parsing and record filtering",
	Long: `Crystal parses search queries such as 'title:dune or pages>300' against a
configured field schema, reports syntax and field errors with suggestions,
and filters JSON, YAML and SQLite records with the result.

The schema, record source, server and telemetry are read from crystal.yaml
(or the file given with --config). Without a configuration file every field
name is accepted and compared loosely.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitOK
	}
	if !cli.Silent(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./"+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, text, console)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
}

// setup loads configuration and builds the logger for the command being run.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoConfig] == "true" {
		return nil
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithRunID(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	config.SetConfig(cfg)
	state.cfg = cfg
	state.cfgPath = path
	state.logger = logger

	logger.DebugContext(ctx, "configuration loaded",
		"path", path,
		"fields", len(cfg.Schema.Fields),
		"command", cmd.Name(),
	)
	return nil
}

// loadConfig reads --config, or the default file when it exists, with
// environment overrides applied. Without either the defaults are used.
func loadConfig() (*config.Config, string, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.Default(), "", nil
		}
		path = defaultConfigFile
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, "", cli.NewConfigError(path, err.Error())
	}
	return cfg, path, nil
}

// newEngine builds a query engine for schemaCfg with the command logger.
func newEngine(schemaCfg *config.SchemaConfig, opts ...engine.Option) (*engine.Engine, error) {
	opts = append([]engine.Option{engine.WithLogger(state.logger)}, opts...)
	eng, err := engine.New(schemaCfg, opts...)
	if err != nil {
		return nil, cli.NewConfigError("schema", err.Error())
	}
	return eng, nil
}

// colorEnabled reports whether diagnostics written to f may be colored.
func colorEnabled(f any) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
