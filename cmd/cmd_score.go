package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	service "github.com/okian/proofscore/internal/app"
	"github.com/okian/proofscore/internal/domain/model"
	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/internal/domain/scoring"
)

// Output formats of the score command.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// scoreResult is one printed line of the score command.
type scoreResult struct {
	Index    int                   `json:"index" yaml:"index"`
	Valid    bool                  `json:"valid" yaml:"valid"`
	Score    float64               `json:"score" yaml:"score"`
	RawScore float64               `json:"raw_score" yaml:"raw_score"`
	Bonus    float64               `json:"bonus" yaml:"bonus"`
	Checks   []scoring.CheckResult `json:"checks" yaml:"checks"`
}

func newScoreResult(ev model.Evaluation) scoreResult { //nolint:gocritic // hugeParam
	score, valid := ev.Report.Outcome.Value()
	return scoreResult{
		Index:    ev.Index,
		Valid:    valid,
		Score:    score,
		RawScore: ev.Report.Final,
		Bonus:    ev.Report.Bonus,
		Checks:   ev.Report.Checks,
	}
}

func newScoreCommand(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "score FILE",
		Short: "Score every record in a JSON file",
		Long: `Score every record in a JSON file holding one record or an array of
records, and print one result per record. Use "-" to read standard input.

A rejected record prints valid=false and score 0; raw_score keeps the
weighted score it was rejected on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputYAML {
				return fmt.Errorf("unknown output format %q (want %s or %s)", output, outputJSON, outputYAML)
			}

			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			recs, err := record.DecodeMany(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			ctx := cmd.Context()
			svc := service.New(
				service.WithLogger(c.log.Named("service")),
				service.WithWorkerCount(c.cfg.WorkerCount),
				service.WithQueueSize(max(c.cfg.QueueSize, len(recs))),
				service.WithScoringOptions(c.scoringOptions()...),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			evals, err := svc.EvaluateBatch(ctx, recs)
			if stopErr := svc.Stop(ctx); err == nil {
				err = stopErr
			}
			if err != nil {
				return err
			}

			results := make([]scoreResult, len(evals))
			for i, ev := range evals {
				results[i] = newScoreResult(ev)
			}
			return writeResults(cmd.OutOrStdout(), output, results)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format: json or yaml")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func writeResults(w io.Writer, format string, results []scoreResult) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
