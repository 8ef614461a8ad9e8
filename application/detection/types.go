package detection

import (
	"context"
	"errors"
	"time"

	"facegate.io/application/constants"
	"facegate.io/entities"
	"facegate.io/infrastructure/biometric/types"
)

type SessionState string

const (
	STATE_IDLE                SessionState = "idle"
	STATE_LOADING_EMPLOYEES   SessionState = "loading_employees"
	STATE_CAMERA_INITIALIZING SessionState = "camera_initializing"
	STATE_CAMERA_READY        SessionState = "camera_ready"
	STATE_DETECTING           SessionState = "detecting"
	STATE_MATCHED             SessionState = "matched"
	STATE_COOLDOWN            SessionState = "cooldown"
	STATE_ERROR               SessionState = "error"
)

var (
	ErrSessionActive    = errors.New("a detection session is already running")
	ErrSessionNotActive = errors.New("no detection session is running")
)

// FrameSource abstracts where frames come from. Implementations must return
// soft biometric errors (ErrNoFaceDetected, ErrInsufficientLandmarks) when a
// frame is simply unusable; any other error is treated as a stream failure.
type FrameSource interface {
	Init(ctx context.Context) error
	Capture(ctx context.Context) (*types.Frame, error)
	Close() error
}

// IdentityStore loads the enrolled population and notifies the session when
// it changes. Change notifications replace the whole working set.
type IdentityStore interface {
	LoadAll(ctx context.Context) ([]entities.Employee, error)
	Subscribe(ctx context.Context, onChange func([]entities.Employee)) error
}

// CheckInRecorder persists an accepted match. The session fires and forgets;
// a recorder failure is logged but never rolls back session state.
type CheckInRecorder interface {
	Record(ctx context.Context, checkIn entities.CheckIn) error
}

// Config carries every tunable of the detection loop.
type Config struct {
	TickInterval      time.Duration `validate:"gt=0"`
	MatchedCooldown   time.Duration `validate:"gt=0"`
	IdentityCooldown  time.Duration `validate:"gt=0"`
	DistanceThreshold float64       `validate:"gt=0,lte=2"`
	SimilarityScale   float64       `validate:"gt=0"`
	// DebounceTicks above 1 requires that many consecutive ticks to match
	// the same identity before a check-in is accepted.
	DebounceTicks int `validate:"gte=1"`
	LogCapacity   int `validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:      constants.DETECTION_INTERVAL,
		MatchedCooldown:   constants.MATCHED_COOLDOWN,
		IdentityCooldown:  constants.IDENTITY_COOLDOWN,
		DistanceThreshold: constants.MATCH_DISTANCE_THRESHOLD,
		SimilarityScale:   constants.SIMILARITY_DISTANCE_SCALE,
		DebounceTicks:     1,
		LogCapacity:       constants.CHECKIN_LOG_CAPACITY,
	}
}

// Overlay is the per-tick render snapshot for display layers.
type Overlay struct {
	Box        *types.BoundingBox   `json:"box"`
	Label      string               `json:"label"`
	Similarity float64              `json:"similarity"`
	Accepted   bool                 `json:"accepted"`
	Liveness   types.LivenessScores `json:"liveness"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// CheckInLogEntry is one row of the bounded in-memory display log.
type CheckInLogEntry struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Similarity float64   `json:"similarity"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status is the outward view of a session.
type Status struct {
	SessionID     string            `json:"session_id"`
	State         SessionState      `json:"state"`
	Message       string            `json:"message,omitempty"`
	EmployeeCount int               `json:"employee_count"`
	Overlay       Overlay           `json:"overlay"`
	RecentLog     []CheckInLogEntry `json:"recent_log"`
}
