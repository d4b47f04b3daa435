package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/okian/proofscore/internal/config"
	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/pkg/logger"
)

var version = "dev"

// cli holds what PersistentPreRunE prepares for the subcommands.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "proofscore",
		Short: "Score social-profile submissions for a proof of contribution",
		Long: `proofscore scores a social-profile record (handle, description,
followers, ranking, tweets) and decides whether it is accepted.

Without a subcommand it runs as the proof container entrypoint: it reads the
submission from the input directory and writes results.json to the output
directory. Configuration comes from PROOF_* environment variables, an optional
.env file and an optional YAML file named by PROOF_CONFIG.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runProof(cmd.Context())
		},
	}

	debug := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := c.setup(cmd.Context(), cmd); err != nil {
			return err
		}
		if *debug {
			logger.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	cmd.AddCommand(newRunCommand(c))
	cmd.AddCommand(newScoreCommand(c))
	cmd.AddCommand(newServeCommand(c))

	return cmd
}

// setup loads configuration and initializes the process logger on stderr.
func (c *cli) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	c.log = log
	return nil
}

// scoringOptions maps the configured criteria onto validator options.
func (c *cli) scoringOptions() []scoring.Option {
	return []scoring.Option{
		scoring.WithMinFollowers(c.cfg.MinFollowers),
		scoring.WithTargetFollowers(c.cfg.TargetFollowers),
		scoring.WithMaxHandleLength(c.cfg.MaxHandleLength),
		scoring.WithMaxDescriptionLength(c.cfg.MaxDescriptionLength),
		scoring.WithLogger(c.log.Named("scoring")),
	}
}

func execute() error {
	return newRootCommand().ExecuteContext(context.Background())
}
