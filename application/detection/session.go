package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"facegate.io/entities"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/logger"
	"github.com/google/uuid"
)

// Session runs the camera check-in loop: load the enrolled population, open
// the frame source, then tick until stopped. Ticks are self-rescheduling;
// the next tick is armed only after the current one finishes, so a slow
// extraction never stacks work. Every deferred callback carries the
// generation it was armed under and is discarded if the session was stopped
// or restarted in the meantime.
type Session struct {
	mu sync.Mutex

	config    Config
	source    FrameSource
	store     IdentityStore
	recorder  CheckInRecorder
	extractor biometric.Extractor
	matcher   *biometric.Matcher
	liveness  *biometric.LivenessDetector
	cooldowns *CooldownRegistry
	log       *CheckInLog

	id         string
	state      SessionState
	message    string
	employees  map[string]entities.Employee
	candidates []types.Candidate
	generation uint64
	timer      *time.Timer
	cancelSub  context.CancelFunc
	streaks    map[string]int
	overlay    Overlay
	onMatched  func(CheckInLogEntry)
}

func NewSession(source FrameSource, store IdentityStore, recorder CheckInRecorder, config Config) *Session {
	return &Session{
		config:    config,
		source:    source,
		store:     store,
		recorder:  recorder,
		extractor: biometric.NewAutoExtractor(),
		matcher: biometric.NewMatcher(types.MatcherConfig{
			DistanceThreshold: config.DistanceThreshold,
			SimilarityScale:   config.SimilarityScale,
		}),
		liveness:  biometric.NewLivenessDetector(types.FullWeights()),
		cooldowns: NewCooldownRegistry(),
		log:       NewCheckInLog(config.LogCapacity),
		state:     STATE_IDLE,
		employees: map[string]entities.Employee{},
		streaks:   map[string]int{},
	}
}

// OnMatched registers a hook invoked, on its own goroutine, for every
// accepted check-in. Used to publish matched events outward.
func (s *Session) OnMatched(hook func(CheckInLogEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMatched = hook
}

// Start walks the session from idle to detecting. It returns once the first
// tick has been armed or the startup failed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != STATE_IDLE && s.state != STATE_ERROR {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.generation++
	gen := s.generation
	s.id = uuid.NewString()
	s.message = ""
	// drop all evidence left over from a previous activation
	s.overlay = Overlay{}
	s.streaks = map[string]int{}
	s.liveness.Reset()
	s.cooldowns.Reset()
	s.state = STATE_LOADING_EMPLOYEES
	s.mu.Unlock()

	employees, err := s.store.LoadAll(ctx)
	if err != nil {
		s.fail(gen, "loading enrolled identities failed", err)
		return err
	}
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil
	}
	s.applyEmployees(employees)
	s.state = STATE_CAMERA_INITIALIZING
	s.mu.Unlock()

	logger.Info("detection session loading complete", logger.LoggerOptions{
		Key: "employees", Data: len(employees),
	})

	subCtx, cancelSub := context.WithCancel(context.Background())
	if err := s.store.Subscribe(subCtx, func(updated []entities.Employee) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return
		}
		s.applyEmployees(updated)
	}); err != nil {
		// the session still works with a stale population, so only warn
		logger.Warning("employee change subscription unavailable", logger.LoggerOptions{
			Key: "error", Data: err.Error(),
		})
	}

	if err := s.source.Init(ctx); err != nil {
		cancelSub()
		s.fail(gen, "camera initialization failed", err)
		return err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		cancelSub()
		s.source.Close()
		return nil
	}
	s.cancelSub = cancelSub
	s.state = STATE_CAMERA_READY
	s.state = STATE_DETECTING
	s.armTick(gen)
	s.mu.Unlock()
	return nil
}

// Stop tears the session down. In-flight tick results and pending timers
// observe the bumped generation and discard themselves.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state == STATE_IDLE {
		s.mu.Unlock()
		return ErrSessionNotActive
	}
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancelSub := s.cancelSub
	s.cancelSub = nil
	s.state = STATE_IDLE
	s.message = ""
	s.overlay = Overlay{}
	s.streaks = map[string]int{}
	s.mu.Unlock()

	if cancelSub != nil {
		cancelSub()
	}
	s.liveness.Reset()
	s.cooldowns.Reset()
	return s.source.Close()
}

// Status returns the outward view of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SessionID:     s.id,
		State:         s.state,
		Message:       s.message,
		EmployeeCount: len(s.employees),
		Overlay:       s.overlay,
		RecentLog:     s.log.Recent(),
	}
}

// RecentCheckIns exposes the bounded display log.
func (s *Session) RecentCheckIns() []CheckInLogEntry {
	return s.log.Recent()
}

// applyEmployees replaces the working population. Caller holds s.mu.
func (s *Session) applyEmployees(employees []entities.Employee) {
	byID := make(map[string]entities.Employee, len(employees))
	candidates := make([]types.Candidate, 0, len(employees))
	for _, employee := range employees {
		if !employee.Active || employee.DeletedAt != nil {
			continue
		}
		representation := employee.Representation()
		if representation.Kind == entities.RepresentationNone {
			continue
		}
		byID[employee.ID] = employee
		candidates = append(candidates, types.Candidate{
			EmployeeID: employee.ID,
			Vectors:    representation.Vectors,
		})
	}
	s.employees = byID
	s.candidates = candidates
}

// armTick schedules the next tick. Caller holds s.mu.
func (s *Session) armTick(gen uint64) {
	s.timer = time.AfterFunc(s.config.TickInterval, func() { s.tick(gen) })
}

// tick captures one frame, runs it through extraction, liveness and
// matching, then hands the result to finishTick. The lock is not held
// during the biometric work so Stop and Status stay responsive.
func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if s.generation != gen || s.state != STATE_DETECTING {
		s.mu.Unlock()
		return
	}
	candidates := s.candidates
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.TickInterval)
	defer cancel()

	frame, err := s.source.Capture(ctx)
	if err != nil {
		if isSoftBiometricError(err) {
			s.finishTick(gen, nil, nil)
			return
		}
		s.fail(gen, "camera stream failure", err)
		return
	}

	s.liveness.AddFrame(types.LivenessFrame{
		Timestamp: frame.Timestamp,
		Landmarks: frame.Landmarks,
		Box:       frame.Box,
		Depth:     frame.Depth,
	})

	vector, err := s.extractor.Extract(frame)
	if err != nil {
		// both extraction failures are soft, the tick just yields nothing
		s.finishTick(gen, frame, nil)
		return
	}

	s.finishTick(gen, frame, s.matcher.Match(vector, candidates))
}

// finishTick applies a tick result under the lock, accepting a check-in when
// every gate passes, and re-arms the loop.
func (s *Session) finishTick(gen uint64, frame *types.Frame, result *types.MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != STATE_DETECTING {
		// the session was stopped or restarted while this tick was in flight
		return
	}

	overlay := Overlay{
		Liveness:  s.liveness.Scores(),
		UpdatedAt: time.Now(),
	}
	if frame != nil {
		overlay.Box = frame.Box
	}

	// the debounce streak grows on every above-threshold match and resets
	// only when the identity is absent from the tick's result; a liveness
	// dip or near miss mid-streak neither advances nor restarts the count
	matched := result != nil && result.Accepted
	switch {
	case matched:
		s.bumpStreak(result.EmployeeID)
	case result == nil:
		s.streaks = map[string]int{}
	default:
		s.streaks = map[string]int{result.EmployeeID: s.streaks[result.EmployeeID]}
	}

	if result != nil {
		if employee, ok := s.employees[result.EmployeeID]; ok {
			overlay.Label = employee.DisplayName()
		}
		overlay.Similarity = result.Similarity
	}

	accepted := matched && s.liveness.IsLive() &&
		s.streaks[result.EmployeeID] >= s.config.DebounceTicks &&
		!s.cooldowns.Active(result.EmployeeID, s.config.IdentityCooldown)

	if !accepted {
		s.overlay = overlay
		s.armTick(gen)
		return
	}

	overlay.Accepted = true
	s.overlay = overlay
	s.commit(gen, *result)
}

// bumpStreak advances the consecutive-tick counter for the matched identity
// and clears every other identity's streak. Caller holds s.mu.
func (s *Session) bumpStreak(employeeID string) {
	streak := s.streaks[employeeID]
	s.streaks = map[string]int{employeeID: streak + 1}
}

// commit records an accepted match and parks the session in the post-match
// cooldown. Caller holds s.mu.
func (s *Session) commit(gen uint64, result types.MatchResult) {
	now := time.Now()
	employee := s.employees[result.EmployeeID]
	entry := CheckInLogEntry{
		EmployeeID: result.EmployeeID,
		Name:       employee.DisplayName(),
		Similarity: result.Similarity,
		Timestamp:  now,
	}

	s.log.Append(entry)
	s.cooldowns.Stamp(result.EmployeeID)
	s.state = STATE_MATCHED
	s.streaks = map[string]int{}

	checkIn := entities.CheckIn{
		EmployeeID: result.EmployeeID,
		SessionID:  s.id,
		Similarity: result.Similarity,
		Distance:   result.Distance,
		Timestamp:  now,
	}
	go s.record(checkIn)
	if s.onMatched != nil {
		go s.onMatched(entry)
	}

	logger.Info("check-in accepted", logger.LoggerOptions{
		Key: "employeeID", Data: result.EmployeeID,
	}, logger.LoggerOptions{
		Key: "similarity", Data: result.Similarity,
	})

	// hold the matched state briefly for display, then cool down, then
	// resume detecting with fresh per-session evidence
	hold := s.config.MatchedCooldown / 3
	s.timer = time.AfterFunc(hold, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen || s.state != STATE_MATCHED {
			return
		}
		s.state = STATE_COOLDOWN
		s.timer = time.AfterFunc(s.config.MatchedCooldown-hold, func() { s.resume(gen) })
	})
}

// resume transitions cooldown back to detecting.
func (s *Session) resume(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != STATE_COOLDOWN {
		return
	}
	s.liveness.Reset()
	s.streaks = map[string]int{}
	s.state = STATE_DETECTING
	s.armTick(gen)
}

// record persists the check-in off the tick path. Failures are logged and
// never roll back the session.
func (s *Session) record(checkIn entities.CheckIn) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, checkIn); err != nil {
		logger.Error("recording check-in failed", logger.LoggerOptions{
			Key: "employeeID", Data: checkIn.EmployeeID,
		}, logger.LoggerOptions{
			Key: "error", Data: err.Error(),
		})
	}
}

// fail moves the session into the error state unless it was already stopped
// or restarted.
func (s *Session) fail(gen uint64, message string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = STATE_ERROR
	s.message = message
	logger.Error(message, logger.LoggerOptions{
		Key: "error", Data: cause.Error(),
	})
}

func isSoftBiometricError(err error) bool {
	return errors.Is(err, types.ErrNoFaceDetected) || errors.Is(err, types.ErrInsufficientLandmarks)
}
