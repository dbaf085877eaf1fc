// Package policy holds the tunable fusion and re-ranking constants.
// The exact/semantic weight split and the confidence threshold are heuristics
// without a feedback loop, so they are configuration rather than code.
package policy

import "strings"

// Policy configures hybrid fusion and re-ranking behavior.
type Policy struct {
	// Weights for queries classified as exact-term (rare proper nouns,
	// quoted phrases): lexical matching is expected to outperform.
	ExactVectorWeight  float64
	ExactLexicalWeight float64

	// Weights for semantic (conceptual/role-based) queries.
	SemanticVectorWeight  float64
	SemanticLexicalWeight float64

	// Epsilon floors the normalization divisor when a score set is empty
	// or all-zero.
	Epsilon float64

	// ConfidenceThreshold drops re-ranked results scoring below it (0-100).
	ConfidenceThreshold int

	// CandidateMultiplier widens retrieval for the re-ranking stage so the
	// model has room to discard.
	CandidateMultiplier int

	genericTitles map[string]struct{}
}

// defaultGenericTitles are role words too common to treat as exact terms.
var defaultGenericTitles = []string{
	"developer", "engineer", "manager", "designer", "analyst",
	"consultant", "specialist", "director", "architect", "recruiter",
	"founder", "intern", "lead", "programmer", "administrator",
}

// Default returns the production policy.
func Default() Policy {
	return New(nil)
}

// New builds a policy with the given generic title words; nil uses the
// built-in list.
func New(genericTitles []string) Policy {
	if len(genericTitles) == 0 {
		genericTitles = defaultGenericTitles
	}
	titles := make(map[string]struct{}, len(genericTitles))
	for _, w := range genericTitles {
		titles[strings.ToLower(w)] = struct{}{}
	}
	return Policy{
		ExactVectorWeight:     0.3,
		ExactLexicalWeight:    0.7,
		SemanticVectorWeight:  0.7,
		SemanticLexicalWeight: 0.3,
		Epsilon:               0.001,
		ConfidenceThreshold:   40,
		CandidateMultiplier:   2,
		genericTitles:         titles,
	}
}

// Weights returns (vectorWeight, lexicalWeight) for the given query class.
func (p Policy) Weights(exactTerm bool) (float64, float64) {
	if exactTerm {
		return p.ExactVectorWeight, p.ExactLexicalWeight
	}
	return p.SemanticVectorWeight, p.SemanticLexicalWeight
}

// IsGenericTitle reports whether the word is a generic role title.
func (p Policy) IsGenericTitle(word string) bool {
	_, ok := p.genericTitles[strings.ToLower(word)]
	return ok
}
