package entities

import (
	"testing"
	"time"
)

func TestRepresentationResolution(t *testing.T) {
	legacy := []float64{0.1, 0.2, 0.3}
	entryA := EmbeddingEntry{Vector: []float64{0.4, 0.5, 0.6}, Angle: AngleFront, Quality: 0.9}
	entryB := EmbeddingEntry{Vector: []float64{0.7, 0.8, 0.9}, Angle: AngleLeft, Quality: 0.8}

	tests := []struct {
		name        string
		employee    Employee
		wantKind    RepresentationKind
		wantVectors int
	}{
		{
			name:     "no enrollment at all",
			employee: Employee{},
			wantKind: RepresentationNone,
		},
		{
			name:        "legacy single vector",
			employee:    Employee{FaceEmbedding: legacy},
			wantKind:    RepresentationLegacy,
			wantVectors: 1,
		},
		{
			name: "progressive set wins over leftover legacy vector",
			employee: Employee{
				FaceEmbedding: legacy,
				Enrollment: &EnrollmentSet{
					Entries: []EmbeddingEntry{entryA, entryB},
					Average: []float64{0.55, 0.65, 0.75},
				},
			},
			wantKind:    RepresentationProgressive,
			wantVectors: 3, // average first, then both entries
		},
		{
			name: "empty progressive set falls back to legacy",
			employee: Employee{
				FaceEmbedding: legacy,
				Enrollment:    &EnrollmentSet{},
			},
			wantKind:    RepresentationLegacy,
			wantVectors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := tt.employee.Representation()
			if rep.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", rep.Kind, tt.wantKind)
			}
			if len(rep.Vectors) != tt.wantVectors {
				t.Fatalf("vector count = %d, want %d", len(rep.Vectors), tt.wantVectors)
			}
		})
	}
}

func TestEnrollmentSetClone(t *testing.T) {
	original := EnrollmentSet{
		Entries: []EmbeddingEntry{{Vector: []float64{1, 2, 3}, Angle: AngleFront, Quality: 0.9}},
		Average: []float64{1, 2, 3},
	}
	cloned := original.Clone()
	cloned.Entries[0].Vector[0] = 99
	cloned.Average[1] = 99

	if original.Entries[0].Vector[0] != 1 {
		t.Error("mutating a cloned entry vector leaked into the original")
	}
	if original.Average[1] != 2 {
		t.Error("mutating the cloned average leaked into the original")
	}
}

func TestAngleCoverage(t *testing.T) {
	set := EnrollmentSet{Entries: []EmbeddingEntry{
		{Angle: AngleFront},
		{Angle: AngleSlightLeft},
	}}
	coverage := set.AngleCoverage()
	if !coverage[AngleFront] || !coverage[AngleSlightLeft] {
		t.Error("covered angles not reported")
	}
	if coverage[AngleRight] {
		t.Error("uncovered angle reported as covered")
	}
	if len(coverage) != len(ValidAngleTags) {
		t.Errorf("coverage has %d keys, want %d", len(coverage), len(ValidAngleTags))
	}
}

func TestParseModelStampsNewRecords(t *testing.T) {
	parsed := Employee{FirstName: "Ada", LastName: "Obi", Active: true}.ParseModel().(*Employee)
	if parsed.ID == "" {
		t.Error("new employee did not get an id")
	}
	if parsed.CreatedAt.IsZero() || parsed.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}

	existing := Employee{ID: "existing", CreatedAt: time.Now().Add(-time.Hour)}
	reparsed := existing.ParseModel().(*Employee)
	if reparsed.ID != "existing" {
		t.Error("existing id was replaced")
	}
}
