package domain

// MedicinePattern maps a canonical medicine name to its known surface forms
// (brand names, synonyms). Variations are lowercase.
type MedicinePattern struct {
	Name       string   `json:"name" yaml:"name"`
	Variations []string `json:"variations" yaml:"variations"`
}

// Candidate is a medicine recognized in prescription text
type Candidate struct {
	FoundText        string `json:"foundText"`
	MatchedName      string `json:"matchedCanonicalName"`
	MatchedVariation string `json:"matchedVariation"`
	Confidence       int    `json:"confidence"` // 0-100
}

// ResolvedMatch is a candidate together with the catalog products it resolved to.
// BestMatch is the first product, or nil when Products is empty.
type ResolvedMatch struct {
	Candidate Candidate `json:"candidate"`
	Products  []Product `json:"products"`
	BestMatch *Product  `json:"bestMatch"`
}

// AnalysisResult is the output of one prescription analysis
type AnalysisResult struct {
	ID                  string          `json:"id"`
	ResolvedMatches     []ResolvedMatch `json:"resolvedMatches"`
	UnmatchedCandidates []Candidate     `json:"unmatchedCandidates"`
	DetectedLines       []string        `json:"detectedLines"`
}

// AnalyzeTextRequest represents a request to analyze already-recognized text
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalysisState is the lifecycle state of a prescription analysis
type AnalysisState string

const (
	StateIdle       AnalysisState = "idle"
	StateExtracting AnalysisState = "extracting"
	StateScanning   AnalysisState = "scanning"
	StateResolving  AnalysisState = "resolving"
	StateDone       AnalysisState = "done"
	StateFailed     AnalysisState = "failed"
)

// Busy reports whether an analysis is currently running in this state
func (s AnalysisState) Busy() bool {
	return s == StateExtracting || s == StateScanning || s == StateResolving
}
