package entity

// Candidate is one (identifier, display name) pair produced by a search
// call, scored against the user's query. Ephemeral, never persisted.
type Candidate struct {
	ID    int
	Name  string
	Score float64
}

// ItemMeta carries the classification fields used for category grouping.
type ItemMeta struct {
	ID             int
	Name           string
	SearchCategory string
	UICategory     string
}
