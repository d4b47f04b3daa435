// Package proof turns the contributor's input file into a scored proof
// envelope and writes it where the proof runtime collects it.
package proof

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/pkg/logger"
	"github.com/okian/proofscore/pkg/metrics"
)

// Default generator configuration constants.
const (
	defaultInputDir  = "/input"
	defaultOutputDir = "/output"

	// ResultsFile is the name of the file WriteResults produces.
	ResultsFile = "results.json"

	extZip  = ".zip"
	extJSON = ".json"

	maxEntrySize = 64 << 20
)

// Generator scores the input directory and writes the proof.
type Generator struct {
	dlpID     int
	inputDir  string
	outputDir string
	evaluator scoring.Evaluator
	logger    logger.Logger
}

// New creates a generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		inputDir:  defaultInputDir,
		outputDir: defaultOutputDir,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Get().Named("proof")
	}

	if g.evaluator == nil {
		g.evaluator = scoring.NewValidator(scoring.WithLogger(g.logger.Named("scoring")))
	}

	return g
}

// Discover returns the input file to score, or "" when the input directory
// holds no candidate. Candidates are .zip and .json files; when several exist
// the last one in name order wins.
func (g *Generator) Discover(ctx context.Context) (string, error) {
	entries, err := os.ReadDir(g.inputDir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w: %w", g.inputDir, ErrReadInput, err)
	}

	var candidates []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case extZip, extJSON:
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		g.logger.Warn(ctx, "no input file found", logger.String("dir", g.inputDir))
		return "", nil
	}

	sort.Strings(candidates)
	if len(candidates) > 1 {
		g.logger.Warn(ctx, "several input files found, using the last",
			logger.Int("count", len(candidates)),
			logger.String("file", candidates[len(candidates)-1]),
		)
	}
	return filepath.Join(g.inputDir, candidates[len(candidates)-1]), nil
}

// Load reads and decodes the record stored at path. A .zip file is read as an
// archive and its first .json entry decoded; when it is not an archive its
// raw bytes are decoded as JSON instead.
func Load(path string) (record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	if strings.EqualFold(filepath.Ext(path), extZip) {
		zr, zerr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zerr == nil {
			return loadArchive(zr)
		}
	}

	rec, err := record.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", filepath.Base(path), ErrDecodeInput, err)
	}
	return rec, nil
}

func loadArchive(zr *zip.Reader) (record.Record, error) {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), extJSON) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w: %w", f.Name, ErrReadInput, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", f.Name, ErrReadInput, err)
		}

		rec, err := record.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", f.Name, ErrDecodeInput, err)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("archive has no json entry: %w", ErrDecodeInput)
}

// Generate discovers the input, scores it and builds the proof response.
func (g *Generator) Generate(ctx context.Context) (Response, error) {
	path, err := g.Discover(ctx)
	if err != nil {
		return Response{}, err
	}

	rec := record.Record{}
	var source string
	if path != "" {
		g.logger.Info(ctx, "reading input", logger.String("file", path))
		if rec, err = Load(path); err != nil {
			metrics.RecordErrorByComponent("proof", "load")
			return Response{}, err
		}
		source = filepath.Base(path)
	}

	resp := newResponse(g.dlpID, source, g.evaluator.Evaluate(ctx, rec))
	metrics.RecordProofGenerated(resp.Valid)

	g.logger.Info(ctx, "proof generated",
		logger.Bool("valid", resp.Valid),
		logger.Float64("score", resp.Score),
		logger.Int("dlp_id", resp.DLPID),
	)
	return resp, nil
}

// WriteResults writes resp as indented JSON to results.json in the output
// directory and returns the file path.
func (g *Generator) WriteResults(ctx context.Context, resp Response) (string, error) { //nolint:gocritic // hugeParam
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w: %w", g.outputDir, ErrWriteOutput, err)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode response: %w: %w", ErrWriteOutput, err)
	}

	path := filepath.Join(g.outputDir, ResultsFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // results are meant to be world readable
		return "", fmt.Errorf("write %s: %w: %w", path, ErrWriteOutput, err)
	}

	g.logger.Info(ctx, "results written", logger.String("path", path))
	return path, nil
}
