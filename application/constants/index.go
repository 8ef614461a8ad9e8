package constants

import "time"

// embedding dimensions per strategy. enrolled and query vectors must come
// from the same strategy for a comparison to be valid.
var PIXEL_GRID_SIZE int = 12 // 12x12 luminance grid -> 144 components
var GEOMETRY_EMBEDDING_DIM int = 128
var MIN_LANDMARK_COUNT int = 468 // dense mesh required by the geometry strategy

// matching
var MATCH_DISTANCE_THRESHOLD float64 = 0.45
var SIMILARITY_DISTANCE_SCALE float64 = 2.0 // max L2 distance between unit vectors

// progressive enrollment
var MAX_EMBEDDINGS int = 20
var MIN_QUALITY_TO_ADD float64 = 0.70
var MIN_SIMILARITY_TO_ADD float64 = 0.80
var REPLACE_THRESHOLD float64 = 0.10

// liveness
var LIVENESS_HISTORY_SIZE int = 8
var LIVENESS_MIN_FRAMES int = 3

// detection loop
var DETECTION_INTERVAL = 700 * time.Millisecond
var MATCHED_COOLDOWN = 3 * time.Second
var IDENTITY_COOLDOWN = 30 * time.Second
var CHECKIN_LOG_CAPACITY int = 50

var EMPLOYEES_CHANGED_CHANNEL = "facegate.employees.changed"
var MATCHED_EVENT_CHANNEL = "facegate.checkins.matched"
