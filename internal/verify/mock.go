package verify

import "FeedSentinel/internal/domain"

// Canned responses for running the service without any API credentials. The
// shapes match real analyses so downstream consumers exercise the same paths.

func mockPostVerdict() domain.Verdict {
	return domain.Verdict{
		Flag:       true,
		Confidence: domain.ConfidenceMedium,
		Category:   domain.CategoryFalseContext,
		Summary:    "[MOCK] Simulated unified analysis — this post would require additional context based on available sources.",
		Reasoning: domain.Reasoning{
			Image:       "[MOCK] Image appears reused.",
			Text:        "[MOCK] Text claim is ambiguous.",
			Author:      "[MOCK] Author reputation is unclear.",
			Consistency: "[MOCK] Image and text do not fully align.",
		},
		Sources: []domain.Source{
			{Title: "Mock Source — Reuters", URL: "https://reuters.com/mock"},
			{Title: "Mock Source — AP News", URL: "https://apnews.com/mock"},
		},
	}
}

func mockTextVerdict() domain.Verdict {
	return domain.Verdict{
		Flag:       true,
		Confidence: domain.ConfidenceMedium,
		Category:   domain.CategoryFalseContext,
		Summary:    "[MOCK] Simulated text analysis — this claim would require additional context based on available sources.",
		Sources: []domain.Source{
			{Title: "Mock Source — Reuters", URL: "https://reuters.com/mock"},
			{Title: "Mock Source — AP News", URL: "https://apnews.com/mock"},
		},
	}
}

func mockProvenance(year int) domain.ImageProvenance {
	return domain.ImageProvenance{
		OldestSourceURL: "https://www.reuters.com/mock-original-story",
		Year:            year,
		Context:         "[MOCK] Simulated web detection — this image appears in an earlier news story.",
		IsMismatch:      true,
	}
}
