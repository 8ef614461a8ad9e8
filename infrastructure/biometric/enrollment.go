package biometric

import (
	"time"

	"facegate.io/application/constants"
	"facegate.io/entities"
	"facegate.io/infrastructure/biometric/types"
)

// AdmitOutcome classifies what the aggregator did with a candidate.
type AdmitOutcome string

const (
	AdmitCreated            AdmitOutcome = "created"
	AdmitAdded              AdmitOutcome = "added"
	AdmitReplaced           AdmitOutcome = "replaced"
	AdmitRejectedQuality    AdmitOutcome = "rejected_quality"
	AdmitRejectedSimilarity AdmitOutcome = "rejected_similarity"
	AdmitRejectedCapacity   AdmitOutcome = "rejected_capacity"
)

// Accepted reports whether the outcome changed the enrollment set.
func (o AdmitOutcome) Accepted() bool {
	return o == AdmitCreated || o == AdmitAdded || o == AdmitReplaced
}

// EnrollmentAggregator grows a per-identity enrollment set one candidate at
// a time, keeping it capacity-bounded and quality-ranked.
type EnrollmentAggregator struct {
	config types.EnrollmentConfig
}

func NewEnrollmentAggregator(config types.EnrollmentConfig) *EnrollmentAggregator {
	if config.MaxEmbeddings <= 0 {
		config.MaxEmbeddings = constants.MAX_EMBEDDINGS
	}
	if config.MinQualityToAdd <= 0 {
		config.MinQualityToAdd = constants.MIN_QUALITY_TO_ADD
	}
	if config.MinSimilarityToAdd <= 0 {
		config.MinSimilarityToAdd = constants.MIN_SIMILARITY_TO_ADD
	}
	if config.ReplaceThreshold <= 0 {
		config.ReplaceThreshold = constants.REPLACE_THRESHOLD
	}
	return &EnrollmentAggregator{config: config}
}

// Admit runs the candidate through the gate sequence and returns the
// resulting set. Gates apply in order: quality floor, similarity to the
// current average, capacity with replace-worst. Rejections return the input
// set unchanged, so re-presenting the same candidate is idempotent. The
// input set is never mutated; accepted candidates produce a deep copy.
func (ea *EnrollmentAggregator) Admit(existing *entities.EnrollmentSet, candidate entities.EmbeddingEntry) (entities.EnrollmentSet, AdmitOutcome) {
	if candidate.Quality < ea.config.MinQualityToAdd {
		return valueOf(existing), AdmitRejectedQuality
	}

	if existing == nil || len(existing.Entries) == 0 {
		// first embedding bootstraps the set; no average exists to compare against
		set := entities.EnrollmentSet{
			Entries:   []entities.EmbeddingEntry{candidate},
			UpdatedAt: time.Now(),
		}
		set.Average = AverageVector(vectorsOf(set.Entries))
		return set, AdmitCreated
	}

	if len(existing.Average) > 0 {
		distance, ok := EuclideanDistance(candidate.Vector, existing.Average)
		if !ok {
			return *existing, AdmitRejectedSimilarity
		}
		similarity := SimilarityFromDistance(distance, constants.SIMILARITY_DISTANCE_SCALE)
		if similarity < ea.config.MinSimilarityToAdd {
			return *existing, AdmitRejectedSimilarity
		}
	}

	if len(existing.Entries) < ea.config.MaxEmbeddings {
		set := existing.Clone()
		set.Entries = append(set.Entries, candidate)
		set.Average = AverageVector(vectorsOf(set.Entries))
		set.UpdatedAt = time.Now()
		return set, AdmitAdded
	}

	// at capacity, the candidate must beat the worst entry by a margin
	worstIdx := 0
	for i, entry := range existing.Entries {
		if entry.Quality < existing.Entries[worstIdx].Quality {
			worstIdx = i
		}
	}
	if candidate.Quality < existing.Entries[worstIdx].Quality+ea.config.ReplaceThreshold {
		return *existing, AdmitRejectedCapacity
	}

	set := existing.Clone()
	set.Entries[worstIdx] = candidate
	set.Average = AverageVector(vectorsOf(set.Entries))
	set.UpdatedAt = time.Now()
	return set, AdmitReplaced
}

func valueOf(set *entities.EnrollmentSet) entities.EnrollmentSet {
	if set == nil {
		return entities.EnrollmentSet{}
	}
	return *set
}

func vectorsOf(entries []entities.EmbeddingEntry) [][]float64 {
	vectors := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		vectors = append(vectors, entry.Vector)
	}
	return vectors
}
