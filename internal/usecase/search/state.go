package search

import "github.com/kailas-cloud/querygate/internal/aci"

// State is a step of query execution.
type State string

// Execution states. DONE and FAILED are terminal.
const (
	StateBuildParams        State = "BUILD_PARAMS"
	StateExecute            State = "EXECUTE"
	StateSpellingSuggested  State = "SPELLING_SUGGESTED"
	StateRetryExecute       State = "RETRY_EXECUTE"
	StateNoSuggestion       State = "NO_SUGGESTION"
	StateEnrichmentRejected State = "ENRICHMENT_REJECTED"
	StateFallbackExecute    State = "FALLBACK_EXECUTE"
	StateDone               State = "DONE"
	StateFailed             State = "FAILED"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// transitions lists the legal successors of every non-terminal state.
var transitions = map[State][]State{
	StateBuildParams:        {StateExecute, StateFailed},
	StateExecute:            {StateSpellingSuggested, StateNoSuggestion, StateEnrichmentRejected, StateFailed},
	StateSpellingSuggested:  {StateRetryExecute},
	StateRetryExecute:       {StateDone, StateFailed},
	StateNoSuggestion:       {StateDone},
	StateEnrichmentRejected: {StateFallbackExecute, StateDone},
	StateFallbackExecute:    {StateDone, StateFailed},
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Execution records how one query ran: the states it passed through, the
// channel of the first call and the number of backend calls.
type Execution struct {
	Path    []State
	Channel aci.Channel
	Calls   int
}

// Final returns the last state reached.
func (e Execution) Final() State {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1]
}
