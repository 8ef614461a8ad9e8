package biometric

import (
	"facegate.io/application/constants"
	"facegate.io/infrastructure/biometric/types"
)

// Matcher compares a query embedding against the resolved comparison
// vectors of every candidate identity.
type Matcher struct {
	config types.MatcherConfig
}

func NewMatcher(config types.MatcherConfig) *Matcher {
	if config.DistanceThreshold <= 0 {
		config.DistanceThreshold = constants.MATCH_DISTANCE_THRESHOLD
	}
	if config.SimilarityScale <= 0 {
		config.SimilarityScale = constants.SIMILARITY_DISTANCE_SCALE
	}
	return &Matcher{config: config}
}

// Match scores every candidate by the minimum distance across its comparison
// vectors and returns the globally best identity. Ties resolve to the first
// candidate in input order, deterministically. Empty queries, empty
// candidate lists and dimension mismatches all degrade to a nil result,
// never a panic. A non-nil result is not necessarily an accepted one;
// acceptance requires the distance to clear the threshold.
func (m *Matcher) Match(query types.EmbeddingVector, candidates []types.Candidate) *types.MatchResult {
	if len(query) == 0 || len(candidates) == 0 {
		return nil
	}

	var best *types.MatchResult
	for _, candidate := range candidates {
		identityBest := -1.0
		for _, vector := range candidate.Vectors {
			distance, ok := EuclideanDistance(query, vector)
			if !ok {
				continue
			}
			if identityBest < 0 || distance < identityBest {
				identityBest = distance
			}
		}
		if identityBest < 0 {
			continue
		}
		// strict less-than keeps the first-seen identity on exact ties
		if best == nil || identityBest < best.Distance {
			best = &types.MatchResult{
				EmployeeID: candidate.EmployeeID,
				Distance:   identityBest,
				Similarity: SimilarityFromDistance(identityBest, m.config.SimilarityScale),
				Accepted:   identityBest <= m.config.DistanceThreshold,
			}
		}
	}
	return best
}

// Threshold exposes the acceptance distance for callers that surface
// near-miss results with a lower-confidence label.
func (m *Matcher) Threshold() float64 {
	return m.config.DistanceThreshold
}
