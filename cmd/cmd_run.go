package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/internal/proof"
)

func newRunCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Score the input directory and write results.json",
		Long: `Score the submission found in the input directory and write the proof
envelope to results.json in the output directory.

.zip and .json files are considered; when several are present the last one
in name order is used. An empty input directory yields a valid proof with a
zero score.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runProof(cmd.Context())
		},
	}
}

func (c *cli) runProof(ctx context.Context) error {
	g := proof.New(
		proof.WithDLPID(c.cfg.DLPID),
		proof.WithInputDir(c.cfg.InputDir),
		proof.WithOutputDir(c.cfg.OutputDir),
		proof.WithEvaluator(scoring.NewValidator(c.scoringOptions()...)),
		proof.WithLogger(c.log.Named("proof")),
	)

	resp, err := g.Generate(ctx)
	if err != nil {
		return err
	}
	_, err = g.WriteResults(ctx, resp)
	return err
}
