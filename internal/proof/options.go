package proof

import (
	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithDLPID sets the data liquidity pool id stamped on the response.
func WithDLPID(id int) Option {
	return func(g *Generator) {
		g.dlpID = id
	}
}

// WithInputDir sets the directory scanned for input files.
func WithInputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.inputDir = dir
		}
	}
}

// WithOutputDir sets the directory results.json is written to.
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.outputDir = dir
		}
	}
}

// WithEvaluator sets the engine used to score the input record.
func WithEvaluator(e scoring.Evaluator) Option {
	return func(g *Generator) {
		if e != nil {
			g.evaluator = e
		}
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
