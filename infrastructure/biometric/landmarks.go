package biometric

// Landmark indices into the dense 468-point face mesh produced by the
// upstream detector. Only the anatomical points the engine reasons about
// are named here.
const (
	lmForehead      = 10
	lmChin          = 152
	lmNoseTip       = 1
	lmNoseBridge    = 6
	lmLeftEyeOuter  = 33
	lmLeftEyeInner  = 133
	lmLeftEyeTop    = 159
	lmLeftEyeBottom = 145
	lmLeftEyeTopB   = 160
	lmLeftEyeBotB   = 144
	lmLeftEyeTopC   = 158
	lmLeftEyeBotC   = 153
	lmRightEyeInner = 362
	lmRightEyeOuter = 263
	lmRightEyeTop   = 386
	lmRightEyeBot   = 374
	lmRightEyeTopB  = 385
	lmRightEyeBotB  = 380
	lmRightEyeTopC  = 387
	lmRightEyeBotC  = 373
	lmLeftBrow      = 105
	lmRightBrow     = 334
	lmLeftBrowOuter = 46
	lmRightBrowOut  = 276
	lmMouthLeft     = 61
	lmMouthRight    = 291
	lmMouthTop      = 13
	lmMouthBottom   = 14
	lmJawLeft       = 172
	lmJawRight      = 397
	lmCheekLeft     = 234
	lmCheekRight    = 454
)

// depthKeyLandmarks are the points the liveness depth statistic averages
// over: nose tip, eye corners, chin.
var depthKeyLandmarks = []int{lmNoseTip, lmLeftEyeOuter, lmRightEyeOuter, lmLeftEyeInner, lmRightEyeInner, lmChin}

// zOffsetLandmarks feed the 3D discrimination terms of the geometry
// embedding.
var zOffsetLandmarks = []int{lmNoseTip, lmNoseBridge, lmLeftEyeOuter, lmRightEyeOuter, lmLeftEyeInner, lmRightEyeInner, lmChin, lmForehead, lmMouthLeft, lmMouthRight}
