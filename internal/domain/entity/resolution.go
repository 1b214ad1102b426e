package entity

// OutcomeKind classifies the result of a name resolution.
type OutcomeKind int

const (
	OutcomeResolved OutcomeKind = iota
	OutcomeAmbiguous
	OutcomeNotFound
)

// RescueInfo explains which fallback rule produced the query that
// finally matched, so the user can be told in one short phrase.
type RescueInfo struct {
	UsedQuery string
	Reason    string
}

// Resolution is the outcome of Resolve/SelectCandidate.
//
// Resolved:  Item is set.
// Ambiguous: Candidates and SessionID are set; the user must pick.
// NotFound:  everything empty.
type Resolution struct {
	Kind       OutcomeKind
	Item       *Candidate
	Candidates []Candidate
	SessionID  string
	Rescue     *RescueInfo

	// QueryTooGeneric tells the UI that this query will not be
	// remembered even if the user picks a candidate.
	QueryTooGeneric bool
}
