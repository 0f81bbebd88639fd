package domain

// RiskLevel is the coarse rating surfaced next to an analyzed item.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFor folds a verdict into a display rating. Unflagged content is low
// regardless of confidence; a flagged item is high only at high confidence
// and medium otherwise.
func RiskFor(v Verdict) RiskLevel {
	if !v.Flag {
		return RiskLow
	}
	if v.Confidence == ConfidenceHigh {
		return RiskHigh
	}
	return RiskMedium
}
