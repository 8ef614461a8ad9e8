package types

import (
	"errors"
	"image"
	"time"
)

// ErrNoFaceDetected is the soft failure for a frame without a usable face.
// Callers must treat it as a skipped tick, never as a zero-distance match.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrInsufficientLandmarks is returned when a landmark mesh is too sparse
// for the geometry strategy.
var ErrInsufficientLandmarks = errors.New("insufficient landmark points")

// EmbeddingVector is a fixed-length numeric representation of facial
// identity. Enrolled and query vectors must share a length to be comparable.
type EmbeddingVector []float64

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (box BoundingBox) Center() (float64, float64) {
	return box.X + box.Width/2, box.Y + box.Height/2
}

// Frame is one captured camera frame, already run through the upstream
// single-face detector. Either Image+Box (pixel strategy) or Landmarks
// (geometry strategy) may be present.
type Frame struct {
	Timestamp time.Time
	Image     image.Image
	Box       *BoundingBox
	Landmarks []Point
	Depth     *float64
}

// LivenessFrame is the slice of a Frame the liveness detector keeps in its
// ring buffer.
type LivenessFrame struct {
	Timestamp time.Time
	Landmarks []Point
	Box       *BoundingBox
	Depth     *float64
}

type MatchResult struct {
	EmployeeID string  `json:"employeeID"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
	Accepted   bool    `json:"accepted"`
}

// Candidate pairs an identity with its resolved comparison vectors.
type Candidate struct {
	EmployeeID string
	Vectors    [][]float64
}

type MatcherConfig struct {
	DistanceThreshold float64 `validate:"gt=0"`
	SimilarityScale   float64 `validate:"gt=0"`
}

type EnrollmentConfig struct {
	MaxEmbeddings      int     `validate:"gt=0"`
	MinQualityToAdd    float64 `validate:"gte=0,lte=1"`
	MinSimilarityToAdd float64 `validate:"gte=0,lte=1"`
	ReplaceThreshold   float64 `validate:"gte=0,lte=1"`
}

// LivenessWeights controls how the four sub-scores combine into the
// aggregate. They should sum to 1; the aggregate is capped at 1 regardless.
type LivenessWeights struct {
	Movement float64
	Blink    float64
	Depth    float64
	Pose     float64
}

// TwoDWeights suits deployments without depth/pose signals.
func TwoDWeights() LivenessWeights {
	return LivenessWeights{Movement: 0.5, Blink: 0.5}
}

// FullWeights spreads the aggregate evenly across all four signals.
func FullWeights() LivenessWeights {
	return LivenessWeights{Movement: 0.25, Blink: 0.25, Depth: 0.25, Pose: 0.25}
}

// LivenessScores is the derived state recomputed on every frame addition.
type LivenessScores struct {
	Movement       float64 `json:"movement"`
	BlinkDetected  bool    `json:"blinkDetected"`
	DepthVariation float64 `json:"depthVariation"`
	PoseVariation  float64 `json:"poseVariation"`
	Aggregate      float64 `json:"aggregate"`
	FrameCount     int     `json:"frameCount"`
}
