package biometric

import (
	"math"
	"sync"

	"facegate.io/application/constants"
	"facegate.io/infrastructure/biometric/types"
)

const (
	earBlinkThreshold = 0.21
	movementJitterMin = 2.0  // px per step, below this a pair counts as sensor jitter
	movementDivisor   = 40.0 // px, normalizes avg displacement into [0,1]
	depthScale        = 0.05
	poseScale         = 0.35 // normalizes per-step pose deltas
	liveMovementGate  = 0.3
	liveDepthGate     = 0.2
	livePoseGate      = 0.2
)

// LivenessDetector is a stateful, session-scoped analyzer over a short
// sliding window of frames. One instance belongs to exactly one detection
// session; restarting a session must construct a fresh detector or call
// Reset so blink/movement state never leaks across camera activations.
type LivenessDetector struct {
	mu          sync.Mutex
	frames      []types.LivenessFrame
	historySize int
	minFrames   int
	weights     types.LivenessWeights
	scores      types.LivenessScores
}

func NewLivenessDetector(weights types.LivenessWeights) *LivenessDetector {
	if weights == (types.LivenessWeights{}) {
		weights = types.FullWeights()
	}
	return &LivenessDetector{
		historySize: constants.LIVENESS_HISTORY_SIZE,
		minFrames:   constants.LIVENESS_MIN_FRAMES,
		weights:     weights,
	}
}

// AddFrame appends a frame to the ring buffer, evicting the oldest past
// capacity, and recomputes every sub-score from the remaining window.
func (ld *LivenessDetector) AddFrame(frame types.LivenessFrame) {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	ld.frames = append(ld.frames, frame)
	if len(ld.frames) > ld.historySize {
		ld.frames = ld.frames[len(ld.frames)-ld.historySize:]
	}
	ld.recompute()
}

func (ld *LivenessDetector) recompute() {
	movement := ld.movementScore()
	depth := ld.depthVariationScore()
	pose := ld.poseVariationScore()

	// blink stays sticky once observed, cleared only by Reset
	blink := ld.scores.BlinkDetected || ld.detectBlink()

	aggregate := ld.weights.Movement * movement
	if blink {
		aggregate += ld.weights.Blink
	}
	aggregate += ld.weights.Depth * depth
	aggregate += ld.weights.Pose * pose
	if aggregate > 1 {
		aggregate = 1
	}

	ld.scores = types.LivenessScores{
		Movement:       movement,
		BlinkDetected:  blink,
		DepthVariation: depth,
		PoseVariation:  pose,
		Aggregate:      aggregate,
		FrameCount:     len(ld.frames),
	}
}

// movementScore averages bounding-box center displacement plus absolute
// width delta across consecutive frame pairs. Steps below the jitter floor
// contribute zero so sensor noise is not mistaken for life.
func (ld *LivenessDetector) movementScore() float64 {
	var total float64
	pairs := 0
	for i := 1; i < len(ld.frames); i++ {
		prev, curr := ld.frames[i-1].Box, ld.frames[i].Box
		if prev == nil || curr == nil {
			continue
		}
		px, py := prev.Center()
		cx, cy := curr.Center()
		step := math.Hypot(cx-px, cy-py) + math.Abs(curr.Width-prev.Width)
		if step < movementJitterMin {
			step = 0
		}
		total += step
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return clamp01(total / float64(pairs) / movementDivisor)
}

// detectBlink scans the eye-aspect-ratio sequence for a high-low-high
// triplet straddling the blink threshold: one open-closed-open cycle.
func (ld *LivenessDetector) detectBlink() bool {
	ears := make([]float64, 0, len(ld.frames))
	for _, frame := range ld.frames {
		if ear, ok := eyeAspectRatio(frame.Landmarks); ok {
			ears = append(ears, ear)
		}
	}
	if len(ears) < 3 {
		return false
	}
	sawOpen := false
	sawClosed := false
	for _, ear := range ears {
		if !sawOpen {
			if ear > earBlinkThreshold {
				sawOpen = true
			}
			continue
		}
		if !sawClosed {
			if ear < earBlinkThreshold {
				sawClosed = true
			}
			continue
		}
		if ear > earBlinkThreshold {
			return true
		}
	}
	return false
}

// depthVariationScore averages the absolute frame-to-frame change of the
// mean |z| statistic over the key landmarks.
func (ld *LivenessDetector) depthVariationScore() float64 {
	depths := make([]float64, 0, len(ld.frames))
	for _, frame := range ld.frames {
		if d, ok := frameDepth(frame); ok {
			depths = append(depths, d)
		}
	}
	if len(depths) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(depths); i++ {
		total += math.Abs(depths[i] - depths[i-1])
	}
	return clamp01(total / float64(len(depths)-1) / depthScale)
}

// poseVariationScore averages the frame-to-frame change of geometric
// pitch/yaw/roll estimates.
func (ld *LivenessDetector) poseVariationScore() float64 {
	type pose struct{ roll, pitch, yaw float64 }
	poses := make([]pose, 0, len(ld.frames))
	for _, frame := range ld.frames {
		pts := frame.Landmarks
		if len(pts) < constants.MIN_LANDMARK_COUNT {
			continue
		}
		roll := angleOf(pts[lmLeftEyeOuter], pts[lmRightEyeOuter])
		pitch := angleOf(pts[lmForehead], pts[lmChin]) - math.Pi/2
		interEye := dist2D(pts[lmLeftEyeOuter], pts[lmRightEyeOuter])
		var yaw float64
		if interEye > 0 {
			faceCenterX := (pts[lmCheekLeft].X + pts[lmCheekRight].X) / 2
			yaw = (pts[lmNoseTip].X - faceCenterX) / interEye
		}
		poses = append(poses, pose{roll: roll, pitch: pitch, yaw: yaw})
	}
	if len(poses) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(poses); i++ {
		total += math.Abs(poses[i].roll-poses[i-1].roll) +
			math.Abs(poses[i].pitch-poses[i-1].pitch) +
			math.Abs(poses[i].yaw-poses[i-1].yaw)
	}
	return clamp01(total / float64(len(poses)-1) / 3 / poseScale)
}

// IsLive reports false unconditionally until the minimum frame count is
// reached, then gates disjunctively: a single strong signal suffices. This
// deliberately minimizes false rejections of cooperative, mostly-still
// users.
func (ld *LivenessDetector) IsLive() bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if len(ld.frames) < ld.minFrames {
		return false
	}
	return ld.scores.Movement > liveMovementGate ||
		ld.scores.BlinkDetected ||
		ld.scores.DepthVariation > liveDepthGate ||
		ld.scores.PoseVariation > livePoseGate
}

// Scores returns a copy of the derived state for display layers.
func (ld *LivenessDetector) Scores() types.LivenessScores {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.scores
}

// Reset clears the buffer and all derived state, including the sticky blink
// flag.
func (ld *LivenessDetector) Reset() {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.frames = nil
	ld.scores = types.LivenessScores{}
}

// eyeAspectRatio computes the ratio of vertical eye-opening distances to
// horizontal eye width, averaged across both eyes.
func eyeAspectRatio(pts []types.Point) (float64, bool) {
	if len(pts) < constants.MIN_LANDMARK_COUNT {
		return 0, false
	}
	left, ok := singleEyeAspectRatio(pts,
		lmLeftEyeOuter, lmLeftEyeInner,
		lmLeftEyeTop, lmLeftEyeBottom, lmLeftEyeTopB, lmLeftEyeBotB, lmLeftEyeTopC, lmLeftEyeBotC)
	if !ok {
		return 0, false
	}
	right, ok := singleEyeAspectRatio(pts,
		lmRightEyeInner, lmRightEyeOuter,
		lmRightEyeTop, lmRightEyeBot, lmRightEyeTopB, lmRightEyeBotB, lmRightEyeTopC, lmRightEyeBotC)
	if !ok {
		return 0, false
	}
	return (left + right) / 2, true
}

func singleEyeAspectRatio(pts []types.Point, corner1, corner2, top1, bot1, top2, bot2, top3, bot3 int) (float64, bool) {
	width := dist2D(pts[corner1], pts[corner2])
	if width == 0 {
		return 0, false
	}
	vertical := dist2D(pts[top1], pts[bot1]) + dist2D(pts[top2], pts[bot2]) + dist2D(pts[top3], pts[bot3])
	return vertical / 3 / width, true
}

// frameDepth prefers the frame's own depth scalar, falling back to the mean
// |z| of the key landmarks.
func frameDepth(frame types.LivenessFrame) (float64, bool) {
	if frame.Depth != nil {
		return *frame.Depth, true
	}
	if len(frame.Landmarks) < constants.MIN_LANDMARK_COUNT {
		return 0, false
	}
	var total float64
	for _, idx := range depthKeyLandmarks {
		total += math.Abs(frame.Landmarks[idx].Z)
	}
	return total / float64(len(depthKeyLandmarks)), true
}
