package entities

import (
	"time"

	"facegate.io/application/utils"
)

// Angle tags describe the head pose a sample was captured at.
const (
	AngleFront       = "front"
	AngleLeft        = "left"
	AngleRight       = "right"
	AngleSlightLeft  = "slight-left"
	AngleSlightRight = "slight-right"
)

var ValidAngleTags = []string{AngleFront, AngleLeft, AngleRight, AngleSlightLeft, AngleSlightRight}

// EmbeddingEntry is a single enrolled face sample. Entries are owned by the
// enrollment set they live in and are only mutated through the aggregator.
type EmbeddingEntry struct {
	Vector    []float64 `bson:"vector" json:"vector"`
	Angle     string    `bson:"angle" json:"angle" validate:"oneof=front left right slight-left slight-right"`
	Quality   float64   `bson:"quality" json:"quality" validate:"gte=0,lte=1"`
	RefImage  *string   `bson:"refImage" json:"refImage,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// EnrollmentSet is the progressive multi-sample enrollment of one employee.
// Average holds the component-wise mean of all entry vectors and is kept in
// sync by the aggregator on every mutation.
type EnrollmentSet struct {
	Entries   []EmbeddingEntry `bson:"entries" json:"entries"`
	Average   []float64        `bson:"average" json:"average"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate freely without touching
// the stored set.
func (set EnrollmentSet) Clone() EnrollmentSet {
	cloned := EnrollmentSet{UpdatedAt: set.UpdatedAt}
	if set.Entries != nil {
		cloned.Entries = make([]EmbeddingEntry, len(set.Entries))
		for i, entry := range set.Entries {
			cloned.Entries[i] = entry
			cloned.Entries[i].Vector = append([]float64(nil), entry.Vector...)
		}
	}
	if set.Average != nil {
		cloned.Average = append([]float64(nil), set.Average...)
	}
	return cloned
}

// AngleCoverage reports which of the five pose tags the set has a sample for.
func (set EnrollmentSet) AngleCoverage() map[string]bool {
	coverage := map[string]bool{}
	for _, tag := range ValidAngleTags {
		coverage[tag] = false
	}
	for _, entry := range set.Entries {
		coverage[entry.Angle] = true
	}
	return coverage
}

type RepresentationKind string

const (
	RepresentationNone        RepresentationKind = "none"
	RepresentationLegacy      RepresentationKind = "legacy"
	RepresentationProgressive RepresentationKind = "progressive"
)

// EnrollmentRepresentation is the resolved, match-ready view of an employee's
// enrollment: a flat list of comparison vectors regardless of whether the
// employee carries a legacy single embedding or a progressive set.
type EnrollmentRepresentation struct {
	Kind    RepresentationKind
	Vectors [][]float64
}

// This represents an employee registered for camera check-in
type Employee struct {
	FirstName     string         `bson:"firstName" json:"firstName"`
	LastName      string         `bson:"lastName" json:"lastName"`
	Email         *string        `bson:"email" json:"email,omitempty"`
	Department    *string        `bson:"department" json:"department,omitempty"`
	FaceEmbedding []float64      `bson:"faceEmbedding" json:"-"` // legacy single-vector enrollment
	Enrollment    *EnrollmentSet `bson:"enrollment" json:"enrollment,omitempty"`
	Active        bool           `bson:"active" json:"active"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

// Representation resolves the legacy/progressive split once, before matching.
// A progressive set wins over a leftover legacy vector; the precomputed
// average is included first as a cheap pre-filter.
func (model Employee) Representation() EnrollmentRepresentation {
	if model.Enrollment != nil && len(model.Enrollment.Entries) > 0 {
		vectors := make([][]float64, 0, len(model.Enrollment.Entries)+1)
		if len(model.Enrollment.Average) > 0 {
			vectors = append(vectors, model.Enrollment.Average)
		}
		for _, entry := range model.Enrollment.Entries {
			vectors = append(vectors, entry.Vector)
		}
		return EnrollmentRepresentation{Kind: RepresentationProgressive, Vectors: vectors}
	}
	if len(model.FaceEmbedding) > 0 {
		return EnrollmentRepresentation{Kind: RepresentationLegacy, Vectors: [][]float64{model.FaceEmbedding}}
	}
	return EnrollmentRepresentation{Kind: RepresentationNone}
}

func (model Employee) DisplayName() string {
	return model.FirstName + " " + model.LastName
}

func (model Employee) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		model.ID = utils.GenerateULIDString()
	}
	model.UpdatedAt = now
	return &model
}
