// Package artifacts persists run outputs to a run-scoped directory on disk.
//
// Every run gets its own directory named research_<timestamp> under the
// configured output root. Individual files are written atomically by
// writing to a temp file in the target directory and renaming it into
// place, so a crashed run never leaves a truncated artifact behind.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

// Artifact file names within a run directory.
const (
	PaperFileName    = "research_paper.md"
	MetadataFileName = "metadata.json"
	HistoryFileName  = "pipeline_history.json"
)

// dirTimestampLayout matches the run directory naming scheme,
// e.g. research_20260829_143015.
const dirTimestampLayout = "20060102_150405"

// Metadata is the summary artifact written alongside the paper and the
// full pipeline history. SimulatedAnalysis is always true: the analysis
// stage never touches real data.
type Metadata struct {
	RunID             string `json:"run_id"`
	Timestamp         string `json:"timestamp"`
	Domain            string `json:"domain"`
	Problem           string `json:"problem,omitempty"`
	Hypothesis        string `json:"hypothesis,omitempty"`
	WordCount         int    `json:"word_count,omitempty"`
	Model             string `json:"ai_model,omitempty"`
	PapersFound       int    `json:"papers_found"`
	State             string `json:"state"`
	FailedStage       string `json:"failed_stage,omitempty"`
	Reason            string `json:"reason,omitempty"`
	SimulatedAnalysis bool   `json:"simulated_analysis"`
}

// RunArtifacts reports where a run's outputs landed on disk. Paths that
// were not written (the paper on a failed run) are empty.
type RunArtifacts struct {
	Dir          string
	PaperPath    string
	MetadataPath string
	HistoryPath  string
}

// Writer persists run snapshots under a base output directory.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// NewWriter returns a Writer rooted at baseDir. The directory is created
// on first write.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

// Write persists the full artifact set for a successful run: the paper
// text, the metadata summary, and the pipeline history. The three files
// are written concurrently; if any write fails the run directory may
// hold a partial set, but never a truncated file.
func (w *Writer) Write(ctx context.Context, snap *memory.Snapshot, state string) (*RunArtifacts, error) {
	paper := findPaper(snap)
	if paper == nil {
		return nil, &WriteError{
			Path:    w.baseDir,
			Message: "snapshot has no paper output",
		}
	}

	dir, err := w.makeRunDir()
	if err != nil {
		return nil, err
	}

	meta, err := json.MarshalIndent(buildMetadata(snap, state, "", ""), "", "  ")
	if err != nil {
		return nil, &WriteError{Path: dir, Message: "metadata serialization failed", Cause: err}
	}
	history, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, &WriteError{Path: dir, Message: "history serialization failed", Cause: err}
	}

	out := &RunArtifacts{
		Dir:          dir,
		PaperPath:    filepath.Join(dir, PaperFileName),
		MetadataPath: filepath.Join(dir, MetadataFileName),
		HistoryPath:  filepath.Join(dir, HistoryFileName),
	}

	g, gCtx := errgroup.WithContext(ctx)
	writes := []struct {
		path string
		data []byte
	}{
		{out.PaperPath, []byte(paper.FullText)},
		{out.MetadataPath, meta},
		{out.HistoryPath, history},
	}
	for _, wr := range writes {
		wr := wr
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return &WriteError{Path: wr.path, Message: "write cancelled", Cause: err}
			}
			return writeAtomic(wr.path, wr.data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteDiagnostics persists metadata and history for a run that did not
// produce a paper. The paper artifact is never written on this path.
func (w *Writer) WriteDiagnostics(ctx context.Context, snap *memory.Snapshot, state, failedStage, reason string) (*RunArtifacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, &WriteError{Path: w.baseDir, Message: "write cancelled", Cause: err}
	}

	dir, err := w.makeRunDir()
	if err != nil {
		return nil, err
	}

	meta, err := json.MarshalIndent(buildMetadata(snap, state, failedStage, reason), "", "  ")
	if err != nil {
		return nil, &WriteError{Path: dir, Message: "metadata serialization failed", Cause: err}
	}
	history, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, &WriteError{Path: dir, Message: "history serialization failed", Cause: err}
	}

	out := &RunArtifacts{
		Dir:          dir,
		MetadataPath: filepath.Join(dir, MetadataFileName),
		HistoryPath:  filepath.Join(dir, HistoryFileName),
	}
	if err := writeAtomic(out.MetadataPath, meta); err != nil {
		return nil, err
	}
	if err := writeAtomic(out.HistoryPath, history); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadHistory loads a persisted pipeline history back into a snapshot.
func ReadHistory(path string) (*memory.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Message: "history not readable", Cause: err}
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &ReadError{Path: path, Message: "history not valid JSON", Cause: err}
	}
	return &snap, nil
}

func (w *Writer) makeRunDir() (string, error) {
	dir := filepath.Join(w.baseDir, fmt.Sprintf("research_%s", w.now().Format(dirTimestampLayout)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &WriteError{Path: dir, Message: "could not create run directory", Cause: err}
	}
	return dir, nil
}

func buildMetadata(snap *memory.Snapshot, state, failedStage, reason string) Metadata {
	meta := Metadata{
		RunID:             snap.RunID.String(),
		Timestamp:         snap.CreatedAt.Format(dirTimestampLayout),
		Domain:            snap.Domain,
		State:             state,
		FailedStage:       failedStage,
		Reason:            reason,
		SimulatedAnalysis: true,
	}
	for _, entry := range snap.Entries {
		switch out := entry.Output.(type) {
		case *types.ProblemOutput:
			meta.Problem = out.ProblemStatement
			meta.PapersFound = out.PapersFound
		case *types.HypothesisOutput:
			meta.Hypothesis = out.Statement
		case *types.PaperOutput:
			meta.WordCount = out.WordCount
			meta.Model = out.Model
		}
	}
	return meta
}

func findPaper(snap *memory.Snapshot) *types.PaperOutput {
	for _, entry := range snap.Entries {
		if paper, ok := entry.Output.(*types.PaperOutput); ok {
			return paper
		}
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return &WriteError{Path: path, Message: "could not create temp file", Cause: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Message: "write failed", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Message: "close failed", Cause: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Message: "chmod failed", Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Message: "rename failed", Cause: err}
	}
	return nil
}
