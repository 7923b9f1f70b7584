package k8sagent

// Verdict is the outcome of grading a candidate.
type Verdict string

const (
	VerdictPass             Verdict = "pass"
	VerdictNeedsImprovement Verdict = "needs_improvement"
)

// Candidate is one generated response tagged with its 1-based iteration index.
type Candidate struct {
	Iteration int
	Text      string
}

// Evaluation is the parsed result of grading a candidate.
type Evaluation struct {
	// Verdict is Pass or NeedsImprovement.
	Verdict Verdict

	// Feedback is the text handed to the generator on the next iteration.
	Feedback string

	// Raw is the unparsed evaluator output. Empty for synthesized evaluations.
	Raw string

	// Skipped is true when the evaluator could not be reached and the verdict was synthesized.
	Skipped bool
}

// Passed reports whether the verdict is Pass.
func (e Evaluation) Passed() bool {
	return e.Verdict == VerdictPass
}

// TranscriptEntry records one iteration. Evaluation is nil for the final iteration, which is
// accepted without grading.
type TranscriptEntry struct {
	Iteration  int
	Candidate  Candidate
	Evaluation *Evaluation
}

// Transcript is the append-only history of one request. It is not safe for concurrent use and
// is never shared between requests.
type Transcript struct {
	entries []TranscriptEntry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records an entry. The entry (and its evaluation) is copied so later changes by the
// caller do not leak into the history.
func (t *Transcript) Append(candidate Candidate, evaluation *Evaluation) {
	entry := TranscriptEntry{
		Iteration: candidate.Iteration,
		Candidate: candidate,
	}
	if evaluation != nil {
		ev := *evaluation
		entry.Evaluation = &ev
	}
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of all entries in order.
func (t *Transcript) Entries() []TranscriptEntry {
	out := make([]TranscriptEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e
		if e.Evaluation != nil {
			ev := *e.Evaluation
			out[i].Evaluation = &ev
		}
	}
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// LatestFeedback returns the feedback of the most recent entry that was evaluated.
// The second result is false when nothing has been evaluated yet.
func (t *Transcript) LatestFeedback() (string, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if ev := t.entries[i].Evaluation; ev != nil {
			return ev.Feedback, true
		}
	}
	return "", false
}

// Evaluations returns how many entries carry an evaluation.
func (t *Transcript) Evaluations() int {
	n := 0
	for _, e := range t.entries {
		if e.Evaluation != nil {
			n++
		}
	}
	return n
}
