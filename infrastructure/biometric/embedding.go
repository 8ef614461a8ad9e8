package biometric

import (
	"image"
	"math"

	"facegate.io/application/constants"
	"facegate.io/infrastructure/biometric/types"
	xdraw "golang.org/x/image/draw"
)

// Extractor turns one frame into a fixed-length embedding vector, or fails
// soft with ErrNoFaceDetected / ErrInsufficientLandmarks.
type Extractor interface {
	Extract(frame *types.Frame) (types.EmbeddingVector, error)
}

// GridExtractor implements the pixel-statistic strategy: the face region is
// partitioned into a GridSize x GridSize grid of mean luminance values,
// min-max normalized to [0,1].
type GridExtractor struct {
	GridSize int
}

func NewGridExtractor() *GridExtractor {
	return &GridExtractor{GridSize: constants.PIXEL_GRID_SIZE}
}

func (ge *GridExtractor) Extract(frame *types.Frame) (types.EmbeddingVector, error) {
	if frame == nil || frame.Image == nil || frame.Box == nil {
		return nil, types.ErrNoFaceDetected
	}
	region := clipBox(*frame.Box, frame.Image.Bounds())
	if region.Empty() {
		return nil, types.ErrNoFaceDetected
	}

	// Scaling the face region down to exactly GridSize x GridSize makes each
	// output pixel the mean luminance of one grid cell.
	cells := image.NewRGBA(image.Rect(0, 0, ge.GridSize, ge.GridSize))
	xdraw.ApproxBiLinear.Scale(cells, cells.Bounds(), frame.Image, region, xdraw.Src, nil)

	vector := make(types.EmbeddingVector, 0, ge.GridSize*ge.GridSize)
	for y := 0; y < ge.GridSize; y++ {
		for x := 0; x < ge.GridSize; x++ {
			r, g, b, _ := cells.At(x, y).RGBA()
			luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
			vector = append(vector, luma)
		}
	}
	minMaxNormalize(vector)
	return vector, nil
}

func clipBox(box types.BoundingBox, bounds image.Rectangle) image.Rectangle {
	region := image.Rect(int(box.X), int(box.Y), int(box.X+box.Width), int(box.Y+box.Height))
	return region.Intersect(bounds)
}

// GeometryExtractor implements the landmark strategy: a fixed battery of
// distances, angles and ratios between named anatomical points, normalized
// by inter-eye distance so the vector is scale and translation invariant,
// plus average-depth-relative z offsets for 3D discrimination. Remaining
// slots up to TargetDim are padded with pairwise interaction terms and the
// final vector is L2-normalized.
type GeometryExtractor struct {
	TargetDim    int
	MinLandmarks int
}

func NewGeometryExtractor() *GeometryExtractor {
	return &GeometryExtractor{
		TargetDim:    constants.GEOMETRY_EMBEDDING_DIM,
		MinLandmarks: constants.MIN_LANDMARK_COUNT,
	}
}

func (ge *GeometryExtractor) Extract(frame *types.Frame) (types.EmbeddingVector, error) {
	if frame == nil || len(frame.Landmarks) == 0 {
		return nil, types.ErrNoFaceDetected
	}
	if len(frame.Landmarks) < ge.MinLandmarks {
		return nil, types.ErrInsufficientLandmarks
	}
	pts := frame.Landmarks

	interEye := dist2D(pts[lmLeftEyeOuter], pts[lmRightEyeOuter])
	if interEye == 0 {
		return nil, types.ErrInsufficientLandmarks
	}
	norm := func(a, b types.Point) float64 { return dist2D(a, b) / interEye }

	features := make([]float64, 0, ge.TargetDim)

	// normalized distances
	features = append(features,
		norm(pts[lmLeftEyeOuter], pts[lmLeftEyeInner]),
		norm(pts[lmRightEyeInner], pts[lmRightEyeOuter]),
		norm(pts[lmLeftEyeTop], pts[lmLeftEyeBottom]),
		norm(pts[lmRightEyeTop], pts[lmRightEyeBot]),
		norm(pts[lmLeftBrow], pts[lmLeftEyeTop]),
		norm(pts[lmRightBrow], pts[lmRightEyeTop]),
		norm(pts[lmLeftBrowOuter], pts[lmLeftEyeOuter]),
		norm(pts[lmRightBrowOut], pts[lmRightEyeOuter]),
		norm(pts[lmNoseBridge], pts[lmNoseTip]),
		norm(pts[lmNoseTip], pts[lmMouthTop]),
		norm(pts[lmMouthLeft], pts[lmMouthRight]),
		norm(pts[lmMouthTop], pts[lmMouthBottom]),
		norm(pts[lmMouthBottom], pts[lmChin]),
		norm(pts[lmCheekLeft], pts[lmCheekRight]),
		norm(pts[lmForehead], pts[lmChin]),
		norm(pts[lmJawLeft], pts[lmJawRight]),
		norm(pts[lmNoseTip], pts[lmChin]),
		norm(pts[lmLeftEyeInner], pts[lmNoseTip]),
		norm(pts[lmRightEyeInner], pts[lmNoseTip]),
		norm(pts[lmLeftBrow], pts[lmRightBrow]),
		norm(pts[lmForehead], pts[lmNoseBridge]),
		norm(pts[lmJawLeft], pts[lmChin]),
		norm(pts[lmJawRight], pts[lmChin]),
	)

	// ratios between paired features
	features = append(features,
		safeRatio(norm(pts[lmCheekLeft], pts[lmCheekRight]), norm(pts[lmForehead], pts[lmChin])),
		safeRatio(norm(pts[lmMouthLeft], pts[lmMouthRight]), norm(pts[lmMouthTop], pts[lmMouthBottom])),
		safeRatio(norm(pts[lmLeftEyeTop], pts[lmLeftEyeBottom]), norm(pts[lmLeftEyeOuter], pts[lmLeftEyeInner])),
		safeRatio(norm(pts[lmRightEyeTop], pts[lmRightEyeBot]), norm(pts[lmRightEyeInner], pts[lmRightEyeOuter])),
		safeRatio(norm(pts[lmNoseBridge], pts[lmNoseTip]), norm(pts[lmForehead], pts[lmChin])),
		safeRatio(norm(pts[lmJawLeft], pts[lmJawRight]), norm(pts[lmCheekLeft], pts[lmCheekRight])),
	)

	// angles, radians scaled to [-1,1] by pi
	features = append(features,
		angleOf(pts[lmLeftEyeOuter], pts[lmRightEyeOuter])/math.Pi,
		angleOf(pts[lmForehead], pts[lmChin])/math.Pi,
		angleOf(pts[lmMouthLeft], pts[lmMouthRight])/math.Pi,
		angleAt(pts[lmJawLeft], pts[lmChin], pts[lmCheekLeft])/math.Pi,
		angleAt(pts[lmJawRight], pts[lmChin], pts[lmCheekRight])/math.Pi,
	)

	// z offsets relative to average depth, inter-eye normalized
	var meanZ float64
	for _, idx := range zOffsetLandmarks {
		meanZ += pts[idx].Z
	}
	meanZ /= float64(len(zOffsetLandmarks))
	for _, idx := range zOffsetLandmarks {
		features = append(features, (pts[idx].Z-meanZ)/interEye)
	}

	// interaction-term padding up to the target dimension
	base := len(features)
	for i := 0; len(features) < ge.TargetDim; i++ {
		a := features[i%base]
		b := features[(i*7+3)%base]
		features = append(features, a*b)
	}
	features = features[:ge.TargetDim]

	l2Normalize(features)
	return types.EmbeddingVector(features), nil
}

// AutoExtractor picks the geometry strategy when a dense mesh is available
// and falls back to the pixel grid otherwise.
type AutoExtractor struct {
	Grid     *GridExtractor
	Geometry *GeometryExtractor
}

func NewAutoExtractor() *AutoExtractor {
	return &AutoExtractor{Grid: NewGridExtractor(), Geometry: NewGeometryExtractor()}
}

func (ae *AutoExtractor) Extract(frame *types.Frame) (types.EmbeddingVector, error) {
	if frame == nil {
		return nil, types.ErrNoFaceDetected
	}
	if len(frame.Landmarks) >= ae.Geometry.MinLandmarks {
		return ae.Geometry.Extract(frame)
	}
	if frame.Image != nil && frame.Box != nil {
		return ae.Grid.Extract(frame)
	}
	if len(frame.Landmarks) > 0 {
		return nil, types.ErrInsufficientLandmarks
	}
	return nil, types.ErrNoFaceDetected
}

func dist2D(a, b types.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func angleOf(a, b types.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// angleAt returns the angle at vertex between the rays vertex->a and
// vertex->b.
func angleAt(vertex, a, b types.Point) float64 {
	a1 := angleOf(vertex, a)
	a2 := angleOf(vertex, b)
	diff := math.Abs(a1 - a2)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
