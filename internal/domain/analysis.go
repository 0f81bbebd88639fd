package domain

// AnalysisState tracks a feed item through its single analysis attempt.
// Items move Idle -> Loading -> Result or Error and never re-enter.
type AnalysisState string

const (
	StateIdle    AnalysisState = "idle"
	StateLoading AnalysisState = "loading"
	StateResult  AnalysisState = "result"
	StateError   AnalysisState = "error"
)

// ItemAnalysis is the coordinator's record for one feed item.
type ItemAnalysis struct {
	ItemID  string
	State   AnalysisState
	Record  ExtractedRecord
	Verdict Verdict
	Risk    RiskLevel
	Message string
}
