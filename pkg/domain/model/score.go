package model

// ScoredCandidate pairs a candidate with its relevance score for one query.
// Derived per resolution, never persisted.
type ScoredCandidate struct {
	Candidate *Candidate
	Score     float64 // relevance in [0,100]
}
