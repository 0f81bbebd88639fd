// Package relay carries analysis requests from the capture agent to the
// daemon over the message bus and returns verdicts the same way. The bus is
// the only path between the two processes; when it is gone the agent treats
// the boundary as invalid and fails items locally.
package relay

import (
	"FeedSentinel/internal/domain"
)

// Bus subjects shared by the agent and the daemon.
const (
	// SubjectAnalyze is the request/reply subject for single-item analysis.
	SubjectAnalyze = "sentinel.analyze"

	// SubjectHistoryChanged carries the full history collection after every
	// successful append.
	SubjectHistoryChanged = "sentinel.history.changed"

	// SubjectHistoryList is the request/reply subject for reading the
	// current history collection.
	SubjectHistoryList = "sentinel.history.list"

	// SubjectLifecycle carries capture-layer lifecycle notices such as the
	// first install.
	SubjectLifecycle = "sentinel.lifecycle"
)

// AnalyzeRequest asks the daemon to classify one extracted record.
type AnalyzeRequest struct {
	ID     string                 `json:"id"`
	Record domain.ExtractedRecord `json:"record"`
}

// AnalyzeReply carries either a verdict or the failure message, never both.
type AnalyzeReply struct {
	ID      string          `json:"id"`
	Verdict *domain.Verdict `json:"verdict,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HistoryPayload is the full history collection, newest entries last.
type HistoryPayload struct {
	Entries []domain.HistoryEntry `json:"entries"`
}

// LifecycleNotice reports a capture-layer lifecycle event to the daemon.
type LifecycleNotice struct {
	Name string `json:"name"`
}
