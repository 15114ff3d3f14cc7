package domain

import "slices"

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for debug views and partial updates.
type StateDiff struct {
	// AgentsAppended contains the audit entries added after the old log.
	AgentsAppended []string `json:"agents_appended,omitempty"`

	// HistoryAppended contains session entries added after the old history.
	HistoryAppended []SessionEntry `json:"history_appended,omitempty"`

	// Classification is set when the router's verdict changed.
	Classification *Classification `json:"classification,omitempty"`

	// ExecutorResult is set when the hand-off channel changed.
	ExecutorResult *string `json:"executor_result,omitempty"`

	// FinalAnswer is set when the final answer changed.
	FinalAnswer *string `json:"final_answer,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// Audit log and history are assumed append-only.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == nil {
		oldState = &State{}
	}

	diff := &StateDiff{}

	if n := len(oldState.AgentsActivated); len(newState.AgentsActivated) > n {
		diff.AgentsAppended = slices.Clone(newState.AgentsActivated[n:])
	}
	if n := len(oldState.SessionHistory); len(newState.SessionHistory) > n {
		diff.HistoryAppended = slices.Clone(newState.SessionHistory[n:])
	}
	if newState.Classification != nil && !sameClassification(oldState.Classification, newState.Classification) {
		c := *newState.Classification
		diff.Classification = &c
	}
	if !sameString(oldState.PartialAnswers.ExecutorResult, newState.PartialAnswers.ExecutorResult) && newState.PartialAnswers.ExecutorResult != nil {
		v := *newState.PartialAnswers.ExecutorResult
		diff.ExecutorResult = &v
	}
	if !sameString(oldState.FinalAnswer, newState.FinalAnswer) && newState.FinalAnswer != nil {
		v := *newState.FinalAnswer
		diff.FinalAnswer = &v
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// AgentsDelta returns the agents present in after but not in before, in order of
// appearance. An agent already activated before is not reported again.
func AgentsDelta(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, a := range before {
		seen[a] = struct{}{}
	}
	out := []string{}
	for _, a := range after {
		if _, ok := seen[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.AgentsAppended) == 0 &&
		len(d.HistoryAppended) == 0 &&
		d.Classification == nil &&
		d.ExecutorResult == nil &&
		d.FinalAnswer == nil
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameClassification(a, b *Classification) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type
}
