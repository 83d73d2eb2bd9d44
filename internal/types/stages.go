// Package types defines the structured outputs produced by each pipeline
// stage and the fixed stage ordering shared across the application.
package types

// Stage name constants define the five fixed pipeline stages.
const (
	StageProblemFinder       = "problem_finder"
	StageHypothesisGenerator = "hypothesis_generator"
	StageExperimentDesigner  = "experiment_designer"
	StageDataAnalyst         = "data_analyst"
	StagePaperWriter         = "paper_writer"
)

// StageOrder is the single source of truth for stage sequencing.
// Stage N may only run once stages 0..N-1 have recorded their outputs.
var StageOrder = []string{
	StageProblemFinder,
	StageHypothesisGenerator,
	StageExperimentDesigner,
	StageDataAnalyst,
	StagePaperWriter,
}

// StageIndex returns the position of a stage in the pipeline order,
// or -1 if the name is not a known stage.
func StageIndex(name string) int {
	for i, s := range StageOrder {
		if s == name {
			return i
		}
	}
	return -1
}

// StageOutput is implemented by the five stage output types. The set is
// closed: every member is declared in this package and wired into the
// pipeline in fixed order.
type StageOutput interface {
	// Stage returns the name of the stage that produced this output.
	Stage() string
}

// PaperSummary is one literature search result: a published paper's title,
// its identifier (arXiv ID or URL), and a truncated abstract.
type PaperSummary struct {
	Title           string `json:"title"`
	Identifier      string `json:"identifier"`
	AbstractExcerpt string `json:"abstract_excerpt"`
}

// Literature source constants for ProblemOutput.LiteratureSource.
const (
	SourceArxiv     = "arxiv"
	SourceGenerated = "generated"
)

// ProblemOutput is the result of the problem finder stage: an identified
// research gap grounded in literature search results when available.
type ProblemOutput struct {
	Domain           string         `json:"domain"`
	IdentifiedGap    string         `json:"identified_gap"`
	ProblemStatement string         `json:"problem_statement"`
	Keywords         []string       `json:"extracted_keywords"`
	SourcePapers     []PaperSummary `json:"source_papers"`
	PapersFound      int            `json:"papers_found"`
	LiteratureSource string         `json:"literature_source"`
	Confidence       float64        `json:"confidence"`
}

// Stage implements StageOutput.
func (*ProblemOutput) Stage() string { return StageProblemFinder }

// HypothesisOutput is the result of the hypothesis generator stage:
// one testable hypothesis with its variables.
type HypothesisOutput struct {
	Statement             string   `json:"hypothesis_statement"`
	NullHypothesis        string   `json:"null_hypothesis"`
	AlternativeHypothesis string   `json:"alternative_hypothesis"`
	IndependentVariable   string   `json:"independent_variable"`
	DependentVariable     string   `json:"dependent_variable"`
	ControlVariables      []string `json:"control_variables"`
	HypothesisType        string   `json:"hypothesis_type"`
	EffectDirection       string   `json:"effect_direction"`
}

// Stage implements StageOutput.
func (*HypothesisOutput) Stage() string { return StageHypothesisGenerator }

// ExperimentOutput is the result of the experiment designer stage.
type ExperimentOutput struct {
	DesignType        string   `json:"design_type"`
	Methodology       string   `json:"methodology"`
	SampleSize        int      `json:"sample_size"`
	GroupCount        int      `json:"group_count"`
	ProcedureSteps    []string `json:"procedure_steps"`
	AnalysisPlan      string   `json:"analysis_plan"`
	SignificanceLevel float64  `json:"significance_level"`
}

// Stage implements StageOutput.
func (*ExperimentOutput) Stage() string { return StageExperimentDesigner }

// AnalysisOutput is the result of the data analyst stage. The quantities
// are simulated for illustration: no dataset is collected or analyzed
// anywhere in the pipeline, and Simulated is always true so that
// downstream consumers cannot mistake these for real statistics.
type AnalysisOutput struct {
	PValue            float64 `json:"p_value"`
	EffectSize        float64 `json:"effect_size"`
	Significant       bool    `json:"significant"`
	Interpretation    string  `json:"interpretation"`
	KeyFinding        string  `json:"key_finding"`
	Conclusion        string  `json:"conclusion"`
	StatisticalPower  float64 `json:"statistical_power"`
	ConfidenceLevel   float64 `json:"confidence_level"`
	Simulated         bool    `json:"simulated"`
}

// Stage implements StageOutput.
func (*AnalysisOutput) Stage() string { return StageDataAnalyst }

// SectionBoundary marks where a paper section begins in the full text.
type SectionBoundary struct {
	SectionName string `json:"section_name"`
	StartOffset int    `json:"start_offset"`
}

// PaperOutput is the result of the paper writer stage: the generated
// full text plus post-validation statistics. QualityFlags records
// non-fatal findings such as an out-of-range word count; the pipeline
// favors a flagged artifact over no artifact.
type PaperOutput struct {
	Title             string            `json:"title"`
	FullText          string            `json:"full_text"`
	WordCount         int               `json:"word_count"`
	CitationCount     int               `json:"citation_count"`
	SectionBoundaries []SectionBoundary `json:"section_boundaries"`
	Model             string            `json:"model"`
	QualityFlags      []string          `json:"quality_flags,omitempty"`
}

// Stage implements StageOutput.
func (*PaperOutput) Stage() string { return StagePaperWriter }
