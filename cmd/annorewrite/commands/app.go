// Package commands implements the annorewrite CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/config"
	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
	"github.com/Sumatoshi-tech/annorewrite/pkg/version"
)

// GlobalOptions holds the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

// rewriteFlags are the flags shared by run, check and watch.
type rewriteFlags struct {
	recipeName string
	recipeFile string
	imports    string
	include    []string
	exclude    []string
	workers    int
	strict     bool
}

func (f *rewriteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.recipeName, "recipe", "r", "", "recipe to apply (default from config)")
	cmd.Flags().StringVar(&f.recipeFile, "recipe-file", "", "additional recipe file")
	cmd.Flags().StringVar(&f.imports, "imports", "", "how synthesized types are referenced: qualify or import")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "include globs, relative to each directory argument")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "exclude globs, relative to each directory argument")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "files processed concurrently (0 = one per CPU)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "also require response on converted annotations")
}

// apply overlays explicitly set flags on cfg.
func (f *rewriteFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("recipe") {
		cfg.Recipe.Name = f.recipeName
	}

	if flags.Changed("recipe-file") {
		cfg.Recipe.File = f.recipeFile
	}

	if flags.Changed("imports") {
		cfg.Rewrite.Imports = f.imports
	}

	if flags.Changed("include") {
		cfg.Run.Include = f.include
	}

	if flags.Changed("exclude") {
		cfg.Run.Exclude = f.exclude
	}

	if flags.Changed("workers") {
		cfg.Run.Workers = f.workers
	}

	if flags.Changed("strict") {
		cfg.Rewrite.Strict = f.strict
	}

	return cfg.Validate()
}

// session bundles everything a rewriting command needs.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	runner    *runner.Runner
	patterns  *runner.Patterns
	metrics   *observability.RewriteMetrics
	logger    *slog.Logger
	out       io.Writer
	errOut    io.Writer
	write     bool
}

func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Verbose:
		cfg.Logging.Level = "debug"
	case opts.Quiet:
		cfg.Logging.Level = "error"
	}

	return cfg, nil
}

func initObservability(cfg *config.Config, mode observability.AppMode, logOut io.Writer) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogWriter = logOut
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.DebugTrace = cfg.Telemetry.DebugTrace || cfg.Logging.Level == "debug"

	return observability.Init(obsCfg)
}

// newSession loads configuration, observability, the recipe registry and the
// runner. The caller must call close.
func newSession(cmd *cobra.Command, opts *GlobalOptions, flags *rewriteFlags, mode observability.AppMode, write bool) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	if err = flags.apply(cmd, cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	providers, err := initObservability(cfg, mode, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		providers: providers,
		logger:    providers.Logger,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		write:     write,
	}

	if opts.Quiet {
		s.out = io.Discard
	}

	if err = s.build(); err != nil {
		return nil, errors.Join(err, s.close(context.Background()))
	}

	return s, nil
}

func (s *session) build() error {
	rc, env, err := buildRecipe(s.cfg, s.logger)
	if err != nil {
		return err
	}

	maxSize, err := s.cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	s.patterns, err = runner.NewPatterns(s.cfg.Run.Include, s.cfg.Run.Exclude)
	if err != nil {
		return err
	}

	s.metrics, err = observability.NewRewriteMetrics(s.providers.Meter)
	if err != nil {
		return err
	}

	s.runner = runner.New(rc, env, runner.Options{
		Logger:      s.logger,
		Tracer:      s.providers.Tracer,
		Metrics:     s.metrics,
		MaxFileSize: maxSize,
		Workers:     s.cfg.Run.Workers,
		Write:       s.write,
		Diff:        s.cfg.Run.Diff,
	})

	return nil
}

func (s *session) close(ctx context.Context) error {
	if err := s.providers.Shutdown(ctx); err != nil {
		return fmt.Errorf("observability shutdown: %w", err)
	}

	return nil
}

// buildRecipe resolves the configured recipe from the builtins plus the
// optional recipe file, and prepares its environment.
func buildRecipe(cfg *config.Config, logger *slog.Logger) (*recipe.Recipe, *recipe.Env, error) {
	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	rc, err := registry.Lookup(cfg.Recipe.Name)
	if err != nil {
		return nil, nil, err
	}

	mode, err := cfg.ImportMode()
	if err != nil {
		return nil, nil, err
	}

	known := append(append([]string{}, rc.KnownTypes...), cfg.Resolve.KnownTypes...)

	parser, err := javasrc.NewParser(javasrc.WithKnownTypes(known...))
	if err != nil {
		return nil, nil, err
	}

	return rc, &recipe.Env{Parser: parser, Logger: logger, Imports: mode}, nil
}

func loadRegistry(cfg *config.Config, logger *slog.Logger) (*recipe.Registry, error) {
	parser, err := javasrc.NewParser()
	if err != nil {
		return nil, err
	}

	opts := recipe.CompileOptions{Logger: logger, Strict: cfg.Rewrite.Strict}

	registry, err := recipe.Builtins(parser, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Recipe.File != "" {
		if err = registry.LoadFile(cfg.Recipe.File, parser, opts); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
