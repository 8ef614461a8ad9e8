package biometric

import (
	"testing"
	"time"

	"facegate.io/entities"
	"facegate.io/infrastructure/biometric/types"
)

func testAggregator() *EnrollmentAggregator {
	return NewEnrollmentAggregator(types.EnrollmentConfig{
		MaxEmbeddings:      3,
		MinQualityToAdd:    0.70,
		MinSimilarityToAdd: 0.80,
		ReplaceThreshold:   0.10,
	})
}

func entry(vector []float64, quality float64) entities.EmbeddingEntry {
	return entities.EmbeddingEntry{
		Vector:    vector,
		Angle:     entities.AngleFront,
		Quality:   quality,
		CreatedAt: time.Now(),
	}
}

func TestEnrollmentFirstCandidateCreatesSet(t *testing.T) {
	agg := testAggregator()

	set, outcome := agg.Admit(nil, entry([]float64{1, 0}, 0.9))
	if outcome != AdmitCreated {
		t.Fatalf("outcome = %s, want %s", outcome, AdmitCreated)
	}
	if len(set.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(set.Entries))
	}
	if len(set.Average) != 2 || set.Average[0] != 1 || set.Average[1] != 0 {
		t.Errorf("Average = %v, want the sole vector", set.Average)
	}
}

func TestEnrollmentQualityFloor(t *testing.T) {
	agg := testAggregator()

	set, outcome := agg.Admit(nil, entry([]float64{1, 0}, 0.5))
	if outcome != AdmitRejectedQuality {
		t.Fatalf("outcome = %s, want %s", outcome, AdmitRejectedQuality)
	}
	if len(set.Entries) != 0 {
		t.Error("rejected candidate must not create a set")
	}
	if outcome.Accepted() {
		t.Error("quality rejection should not report as accepted")
	}
}

func TestEnrollmentSimilarityGate(t *testing.T) {
	agg := testAggregator()
	set, _ := agg.Admit(nil, entry([]float64{1, 0}, 0.9))

	t.Run("similar candidate joins", func(t *testing.T) {
		next, outcome := agg.Admit(&set, entry([]float64{1.1, 0}, 0.8))
		if outcome != AdmitAdded {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitAdded)
		}
		if len(next.Entries) != 2 {
			t.Errorf("len(Entries) = %d, want 2", len(next.Entries))
		}
	})

	t.Run("dissimilar candidate rejected", func(t *testing.T) {
		next, outcome := agg.Admit(&set, entry([]float64{3, 0}, 0.95))
		if outcome != AdmitRejectedSimilarity {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitRejectedSimilarity)
		}
		if len(next.Entries) != len(set.Entries) {
			t.Error("similarity rejection must leave the set unchanged")
		}
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		_, outcome := agg.Admit(&set, entry([]float64{1, 0, 0}, 0.95))
		if outcome != AdmitRejectedSimilarity {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitRejectedSimilarity)
		}
	})
}

func fullSet(t *testing.T, agg *EnrollmentAggregator) entities.EnrollmentSet {
	t.Helper()
	set, outcome := agg.Admit(nil, entry([]float64{1, 0}, 0.75))
	if outcome != AdmitCreated {
		t.Fatalf("seed: %s", outcome)
	}
	for _, candidate := range []entities.EmbeddingEntry{
		entry([]float64{1.1, 0}, 0.80),
		entry([]float64{0.9, 0}, 0.90),
	} {
		var out AdmitOutcome
		set, out = agg.Admit(&set, candidate)
		if out != AdmitAdded {
			t.Fatalf("fill: %s", out)
		}
	}
	return set
}

func TestEnrollmentCapacity(t *testing.T) {
	agg := testAggregator()
	set := fullSet(t, agg)

	t.Run("insufficient margin rejected", func(t *testing.T) {
		// worst entry has quality 0.75, margin requires 0.85
		next, outcome := agg.Admit(&set, entry([]float64{1, 0}, 0.80))
		if outcome != AdmitRejectedCapacity {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitRejectedCapacity)
		}
		if len(next.Entries) != 3 {
			t.Errorf("len(Entries) = %d, want 3", len(next.Entries))
		}
	})

	t.Run("delta exactly at the margin replaces", func(t *testing.T) {
		next, outcome := agg.Admit(&set, entry([]float64{1, 0}, 0.85))
		if outcome != AdmitReplaced {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitReplaced)
		}
		if len(next.Entries) != 3 {
			t.Errorf("len(Entries) = %d, want 3", len(next.Entries))
		}
	})

	t.Run("strong candidate replaces worst", func(t *testing.T) {
		next, outcome := agg.Admit(&set, entry([]float64{1.05, 0}, 0.95))
		if outcome != AdmitReplaced {
			t.Fatalf("outcome = %s, want %s", outcome, AdmitReplaced)
		}
		if len(next.Entries) != 3 {
			t.Fatalf("len(Entries) = %d, capacity must hold at 3", len(next.Entries))
		}
		for _, e := range next.Entries {
			if e.Quality == 0.75 {
				t.Error("worst entry should have been evicted")
			}
		}
	})

	t.Run("set never exceeds capacity", func(t *testing.T) {
		current := set
		for i := 0; i < 10; i++ {
			current, _ = agg.Admit(&current, entry([]float64{1, 0.01 * float64(i)}, 0.99))
			if len(current.Entries) > 3 {
				t.Fatalf("iteration %d: len(Entries) = %d exceeds capacity", i, len(current.Entries))
			}
		}
	})
}

func TestEnrollmentRejectionIsIdempotent(t *testing.T) {
	agg := testAggregator()
	set := fullSet(t, agg)
	candidate := entry([]float64{1, 0}, 0.78)

	first, firstOutcome := agg.Admit(&set, candidate)
	second, secondOutcome := agg.Admit(&first, candidate)

	if firstOutcome != AdmitRejectedCapacity || secondOutcome != AdmitRejectedCapacity {
		t.Fatalf("outcomes = %s, %s, want both %s", firstOutcome, secondOutcome, AdmitRejectedCapacity)
	}
	if len(first.Entries) != len(second.Entries) {
		t.Error("re-presenting a rejected candidate must not change the set")
	}
}

func TestEnrollmentInputNotMutated(t *testing.T) {
	agg := testAggregator()
	seed, _ := agg.Admit(nil, entry([]float64{1, 0}, 0.9))
	originalAverage := append([]float64(nil), seed.Average...)

	_, outcome := agg.Admit(&seed, entry([]float64{1.1, 0}, 0.85))
	if outcome != AdmitAdded {
		t.Fatalf("outcome = %s, want %s", outcome, AdmitAdded)
	}
	if len(seed.Entries) != 1 {
		t.Errorf("input set grew to %d entries, must stay at 1", len(seed.Entries))
	}
	for i, v := range seed.Average {
		if v != originalAverage[i] {
			t.Fatal("input set average was mutated")
		}
	}
}
