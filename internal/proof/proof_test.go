package proof_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/internal/proof"
	"github.com/okian/proofscore/pkg/logger"
)

const goodRecord = `{
	"handle": "alice_99",
	"description": "Loves hiking and photography trips",
	"followers": ["bob1", "carol2", "dave_3", "erin44", "frank5", "grace6"],
	"ranking": {"rank": 1},
	"tweets": []
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeArchive(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func newGenerator(in, out string) *proof.Generator {
	return proof.New(
		proof.WithDLPID(42),
		proof.WithInputDir(in),
		proof.WithOutputDir(out),
		proof.WithLogger(logger.Nop()),
	)
}

// The global logger is never initialized in this package.
func TestNewUsesGivenLogger(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "profile.json", goodRecord)

	var g *proof.Generator
	require.NotPanics(t, func() {
		g = proof.New(proof.WithInputDir(in), proof.WithLogger(logger.Nop()))
	})

	resp, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestGenerateFromArchive(t *testing.T) {
	in := t.TempDir()
	writeArchive(t, in, "export.zip", map[string]string{"profile.json": goodRecord})

	resp, err := newGenerator(in, t.TempDir()).Generate(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Valid)
	assert.InDelta(t, 0.606, resp.Score, 1e-9)
	assert.InDelta(t, 0.606, resp.Quality, 1e-9)
	assert.Equal(t, 1.0, resp.Authenticity)
	assert.Equal(t, 1.0, resp.Uniqueness)
	assert.Equal(t, 42, resp.DLPID)
	assert.Equal(t, 42, resp.Metadata.DLPID)
	assert.Equal(t, "export.zip", resp.Attributes.Source)
	assert.Equal(t, 6, resp.Attributes.FollowerCount)
	assert.Len(t, resp.Attributes.Checks, 5)
}

func TestGenerateFromPlainJSONUnderZipName(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "export.ZIP", goodRecord)

	resp, err := newGenerator(in, t.TempDir()).Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.InDelta(t, 0.606, resp.Score, 1e-9)
}

func TestGenerateRejectedRecord(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "data.json", `{"handle": 123}`)

	resp, err := newGenerator(in, t.TempDir()).Generate(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, 0.0, resp.Score)
	assert.Equal(t, 0.0, resp.Attributes.RawScore)
}

func TestGenerateWithoutInput(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "notes.txt", "ignored")

	resp, err := newGenerator(in, t.TempDir()).Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 0.0, resp.Score)
	assert.Empty(t, resp.Attributes.Source)
	assert.Empty(t, resp.Attributes.Checks)
}

func TestGenerateMissingInputDir(t *testing.T) {
	g := newGenerator(filepath.Join(t.TempDir(), "absent"), t.TempDir())

	_, err := g.Generate(context.Background())
	require.ErrorIs(t, err, proof.ErrReadInput)
}

func TestGenerateWithCustomEvaluator(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "data.json", goodRecord)

	g := proof.New(
		proof.WithInputDir(in),
		proof.WithLogger(logger.Nop()),
		proof.WithEvaluator(scoring.NewValidator(scoring.WithTargetFollowers(12))),
	)
	resp, err := g.Generate(context.Background())
	require.NoError(t, err)
	// Six of twelve followers: the follower count check scores 0.5.
	assert.InDelta(t, 0.85, resp.Score, 1e-9)
}

func TestDiscoverLastCandidateWins(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "a.json", `{}`)
	writeFile(t, in, "c.zip", `{}`)
	writeFile(t, in, "b.JSON", `{}`)
	writeFile(t, in, "z.txt", `{}`)
	require.NoError(t, os.Mkdir(filepath.Join(in, "zz.json"), 0o755))

	path, err := newGenerator(in, t.TempDir()).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(in, "c.zip"), path)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("archive without json entry", func(t *testing.T) {
		path := writeArchive(t, dir, "empty.zip", map[string]string{"readme.txt": "hi"})
		_, err := proof.Load(path)
		require.ErrorIs(t, err, proof.ErrDecodeInput)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{"handle":`)
		_, err := proof.Load(path)
		require.ErrorIs(t, err, proof.ErrDecodeInput)
	})

	t.Run("null document", func(t *testing.T) {
		path := writeFile(t, dir, "null.json", `null`)
		rec, err := proof.Load(path)
		require.NoError(t, err)
		assert.True(t, rec.Empty())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := proof.Load(filepath.Join(dir, "nope.json"))
		require.ErrorIs(t, err, proof.ErrReadInput)
	})
}

func TestWriteResults(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "data.json", goodRecord)
	out := filepath.Join(t.TempDir(), "nested", "output")

	g := newGenerator(in, out)
	resp, err := g.Generate(context.Background())
	require.NoError(t, err)

	path, err := g.WriteResults(context.Background(), resp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, proof.ResultsFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"dlp_id", "valid", "score", "authenticity", "ownership", "uniqueness", "quality", "attributes", "metadata"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, true, doc["valid"])
	assert.Equal(t, float64(42), doc["dlp_id"])
}

func TestWriteResultsUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := writeFile(t, base, "file", "x")

	g := newGenerator(base, filepath.Join(blocker, "out"))
	_, err := g.WriteResults(context.Background(), proof.Response{})
	require.ErrorIs(t, err, proof.ErrWriteOutput)
}
