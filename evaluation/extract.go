package evaluation

import (
	"strings"

	"github.com/xj90713/k8sagent"
)

const (
	// PassToken marks an accepted candidate.
	PassToken = "RATING: PASS"

	// FeedbackMarker precedes the feedback text.
	FeedbackMarker = "FEEDBACK:"

	// SkippedFeedback is the feedback attached to a synthesized pass.
	SkippedFeedback = "Unable to evaluate due to repeated evaluation failures, " +
		"but continuing with current response."
)

// Extract parses raw evaluator output.
//
//   - Verdict is Pass iff raw contains [PassToken].
//   - Feedback is the trimmed text after the first [FeedbackMarker].
//   - Without the marker, Feedback is the whole trimmed text.
func Extract(raw string) k8sagent.Evaluation {
	verdict := k8sagent.VerdictNeedsImprovement
	if strings.Contains(raw, PassToken) {
		verdict = k8sagent.VerdictPass
	}

	feedback := strings.TrimSpace(raw)
	if _, after, found := strings.Cut(raw, FeedbackMarker); found {
		feedback = strings.TrimSpace(after)
	}

	return k8sagent.Evaluation{
		Verdict:  verdict,
		Feedback: feedback,
		Raw:      raw,
	}
}

// Skipped builds the synthetic Pass used when the evaluator is unavailable.
func Skipped() k8sagent.Evaluation {
	return k8sagent.Evaluation{
		Verdict:  k8sagent.VerdictPass,
		Feedback: SkippedFeedback,
		Skipped:  true,
	}
}
