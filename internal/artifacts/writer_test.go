package artifacts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

func fullSnapshot(t *testing.T, domain string) *memory.Snapshot {
	t.Helper()
	store := memory.New(uuid.New(), domain)
	outputs := []types.StageOutput{
		&types.ProblemOutput{
			Domain:           domain,
			IdentifiedGap:    "gap",
			ProblemStatement: "How can X improve Y?",
			Keywords:         []string{"x", "y"},
			SourcePapers:     []types.PaperSummary{{Title: "Paper", Identifier: "2301.00001"}},
			PapersFound:      1,
			LiteratureSource: types.SourceArxiv,
			Confidence:       0.85,
		},
		&types.HypothesisOutput{
			Statement:           "Applying X improves Y.",
			NullHypothesis:      "Applying X does not improve Y.",
			IndependentVariable: "x_method",
			DependentVariable:   "y_score",
			ControlVariables:    []string{"seed"},
		},
		&types.ExperimentOutput{
			DesignType:     "Randomized Controlled Trial",
			Methodology:    "random assignment",
			SampleSize:     120,
			GroupCount:     2,
			ProcedureSteps: []string{"recruit", "measure"},
			AnalysisPlan:   "t-test",
		},
		&types.AnalysisOutput{
			PValue:         0.01,
			EffectSize:     0.5,
			Significant:    true,
			Interpretation: "significant",
			Conclusion:     "reject null",
			Simulated:      true,
		},
		&types.PaperOutput{
			Title:         "On X and Y",
			FullText:      "# On X and Y\n\n## Introduction\n\nBody text [1].",
			WordCount:     2600,
			CitationCount: 8,
			Model:         "gemini-2.5-pro",
		},
	}
	for _, out := range outputs {
		require.NoError(t, store.Record(out))
	}
	return store.Snapshot()
}

func TestWritePersistsAllThreeArtifacts(t *testing.T) {
	base := t.TempDir()
	w := NewWriter(base)
	w.now = func() time.Time {
		return time.Date(2026, 8, 29, 14, 30, 15, 0, time.UTC)
	}

	snap := fullSnapshot(t, "Quantum Machine Learning")
	out, err := w.Write(context.Background(), snap, "persisted")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "research_20260829_143015"), out.Dir)

	paper, err := os.ReadFile(out.PaperPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(paper), "# On X and Y"))

	metaBytes, err := os.ReadFile(out.MetadataPath)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(metaBytes, &meta))
	assert.Equal(t, snap.RunID.String(), meta.RunID)
	assert.Equal(t, "Quantum Machine Learning", meta.Domain)
	assert.Equal(t, "How can X improve Y?", meta.Problem)
	assert.Equal(t, "Applying X improves Y.", meta.Hypothesis)
	assert.Equal(t, 2600, meta.WordCount)
	assert.Equal(t, "gemini-2.5-pro", meta.Model)
	assert.Equal(t, 1, meta.PapersFound)
	assert.Equal(t, "persisted", meta.State)
	assert.True(t, meta.SimulatedAnalysis)
	assert.Empty(t, meta.FailedStage)

	_, err = os.Stat(out.HistoryPath)
	require.NoError(t, err)
}

func TestWriteHistoryRoundTrip(t *testing.T) {
	w := NewWriter(t.TempDir())
	snap := fullSnapshot(t, "biology")

	out, err := w.Write(context.Background(), snap, "persisted")
	require.NoError(t, err)

	loaded, err := ReadHistory(out.HistoryPath)
	require.NoError(t, err)

	assert.Equal(t, snap.RunID, loaded.RunID)
	assert.Equal(t, snap.Domain, loaded.Domain)
	require.Len(t, loaded.Entries, len(snap.Entries))
	for i, entry := range loaded.Entries {
		assert.Equal(t, snap.Entries[i].Stage, entry.Stage)
		assert.Equal(t, snap.Entries[i].Output, entry.Output)
	}
}

func TestWriteRequiresPaperOutput(t *testing.T) {
	w := NewWriter(t.TempDir())
	store := memory.New(uuid.New(), "biology")
	require.NoError(t, store.Record(&types.ProblemOutput{
		Domain:           "biology",
		IdentifiedGap:    "gap",
		ProblemStatement: "problem",
		LiteratureSource: types.SourceGenerated,
	}))

	_, err := w.Write(context.Background(), store.Snapshot(), "persisted")
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, we.Message, "no paper output")
}

func TestWriteDiagnosticsOmitsPaper(t *testing.T) {
	base := t.TempDir()
	w := NewWriter(base)

	store := memory.New(uuid.New(), "chemistry")
	require.NoError(t, store.Record(&types.ProblemOutput{
		Domain:           "chemistry",
		IdentifiedGap:    "gap",
		ProblemStatement: "problem",
		LiteratureSource: types.SourceGenerated,
	}))

	out, err := w.WriteDiagnostics(context.Background(), store.Snapshot(), "failed", "hypothesis_generator", "contract violation")
	require.NoError(t, err)

	assert.Empty(t, out.PaperPath)
	_, err = os.Stat(filepath.Join(out.Dir, PaperFileName))
	assert.True(t, os.IsNotExist(err))

	metaBytes, err := os.ReadFile(out.MetadataPath)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(metaBytes, &meta))
	assert.Equal(t, "failed", meta.State)
	assert.Equal(t, "hypothesis_generator", meta.FailedStage)
	assert.Equal(t, "contract violation", meta.Reason)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	w := NewWriter(t.TempDir())
	out, err := w.Write(context.Background(), fullSnapshot(t, "physics"), "persisted")
	require.NoError(t, err)

	entries, err := os.ReadDir(out.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".artifact-"), "leftover temp file %s", entry.Name())
	}
}

func TestWriteCancelledContext(t *testing.T) {
	w := NewWriter(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Write(ctx, fullSnapshot(t, "physics"), "persisted")
	require.Error(t, err)

	_, err = w.WriteDiagnostics(ctx, fullSnapshot(t, "physics"), "failed", "paper_writer", "cancelled")
	require.Error(t, err)
}

func TestReadHistoryErrors(t *testing.T) {
	_, err := ReadHistory(filepath.Join(t.TempDir(), "missing.json"))
	var re *ReadError
	require.ErrorAs(t, err, &re)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = ReadHistory(path)
	require.ErrorAs(t, err, &re)
}
