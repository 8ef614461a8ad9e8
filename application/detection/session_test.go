package detection

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"facegate.io/entities"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/logger"
)

func TestMain(m *testing.M) {
	logger.InitializeLogger()
	os.Exit(m.Run())
}

type fakeStore struct {
	mu        sync.Mutex
	employees []entities.Employee
	loadErr   error
	notify    func([]entities.Employee)
}

func (f *fakeStore) LoadAll(ctx context.Context) ([]entities.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.employees, nil
}

func (f *fakeStore) Subscribe(ctx context.Context, onChange func([]entities.Employee)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notify = onChange
	return nil
}

func (f *fakeStore) publish(employees []entities.Employee) {
	f.mu.Lock()
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify(employees)
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []entities.CheckIn
}

func (f *fakeRecorder) Record(ctx context.Context, checkIn entities.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, checkIn)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeRecorder) first() entities.CheckIn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[0]
}

// testMesh builds a deterministic non-degenerate 468-point mesh.
func testMesh() []types.Point {
	pts := make([]types.Point, 468)
	for i := range pts {
		pts[i] = types.Point{
			X: float64((i * 37) % 97),
			Y: float64((i * 53) % 89),
			Z: float64((i*13)%31) / 100,
		}
	}
	return pts
}

func enrolledEmployee(t *testing.T, id string) entities.Employee {
	t.Helper()
	vector, err := biometric.NewGeometryExtractor().Extract(&types.Frame{Landmarks: testMesh()})
	if err != nil {
		t.Fatalf("building enrollment vector: %v", err)
	}
	return entities.Employee{
		ID:            id,
		FirstName:     "Ada",
		LastName:      "Obi",
		FaceEmbedding: vector,
		Active:        true,
	}
}

func fastConfig() Config {
	config := DefaultConfig()
	config.TickInterval = 2 * time.Millisecond
	config.MatchedCooldown = 60 * time.Millisecond
	config.IdentityCooldown = 500 * time.Millisecond
	return config
}

// quietConfig keeps armed timers from ever firing during a test.
func quietConfig() Config {
	config := DefaultConfig()
	config.TickInterval = time.Hour
	config.MatchedCooldown = time.Hour
	config.IdentityCooldown = time.Hour
	return config
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// makeLive feeds the detector enough moving-box frames to pass the gate.
func makeLive(t *testing.T, session *Session) {
	t.Helper()
	for i := 0; i < 3; i++ {
		session.liveness.AddFrame(types.LivenessFrame{
			Timestamp: time.Now(),
			Box:       &types.BoundingBox{X: float64(i) * 40, Y: 0, Width: 100, Height: 100},
		})
	}
	if !session.liveness.IsLive() {
		t.Fatal("setup: detector should read live")
	}
}

func detectingSession(t *testing.T, config Config, employees ...entities.Employee) (*Session, *fakeRecorder) {
	t.Helper()
	recorder := &fakeRecorder{}
	session := NewSession(NewPushFrameSource(), &fakeStore{employees: employees}, recorder, config)
	session.applyEmployees(employees)
	session.state = STATE_DETECTING
	session.generation = 1
	return session, recorder
}

func acceptedResult(id string) *types.MatchResult {
	return &types.MatchResult{EmployeeID: id, Distance: 0, Similarity: 1, Accepted: true}
}

func TestSessionLifecycle(t *testing.T) {
	source := NewPushFrameSource()
	store := &fakeStore{employees: []entities.Employee{enrolledEmployee(t, "emp1")}}
	recorder := &fakeRecorder{}
	session := NewSession(source, store, recorder, fastConfig())

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer session.Stop()

	if err := session.Start(context.Background()); err != ErrSessionActive {
		t.Errorf("second Start() error = %v, want ErrSessionActive", err)
	}

	// feed frames from a producer goroutine: same face, moving box
	done := make(chan struct{})
	defer close(done)
	go func() {
		mesh := testMesh()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			source.Push(&types.Frame{
				Timestamp: time.Now(),
				Landmarks: mesh,
				Box:       &types.BoundingBox{X: float64(i%50) * 30, Y: 0, Width: 100, Height: 100},
			})
			time.Sleep(time.Millisecond)
		}
	}()

	waitFor(t, "first accepted check-in", func() bool { return recorder.count() == 1 })

	checkIn := recorder.first()
	if checkIn.EmployeeID != "emp1" {
		t.Errorf("CheckIn.EmployeeID = %s, want emp1", checkIn.EmployeeID)
	}
	if checkIn.SessionID == "" {
		t.Error("CheckIn.SessionID should be set")
	}
	if checkIn.Similarity != 1 {
		t.Errorf("CheckIn.Similarity = %f, want 1 for an exact vector", checkIn.Similarity)
	}

	entries := session.RecentCheckIns()
	if len(entries) != 1 || entries[0].Name != "Ada Obi" {
		t.Errorf("RecentCheckIns = %+v, want one entry for Ada Obi", entries)
	}

	// the identity cooldown suppresses repeat check-ins while detection resumes
	waitFor(t, "loop back in detecting", func() bool { return session.Status().State == STATE_DETECTING })
	time.Sleep(100 * time.Millisecond)
	if got := recorder.count(); got != 1 {
		t.Errorf("records = %d, identity cooldown should have held it at 1", got)
	}

	// an employee-change notification replaces the whole population
	store.publish(nil)
	waitFor(t, "population replaced", func() bool { return session.Status().EmployeeCount == 0 })

	if err := session.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := session.Status().State; got != STATE_IDLE {
		t.Errorf("state after Stop = %s, want %s", got, STATE_IDLE)
	}
	if err := session.Stop(); err != ErrSessionNotActive {
		t.Errorf("second Stop() error = %v, want ErrSessionNotActive", err)
	}
}

func TestFinishTickRequiresLiveness(t *testing.T) {
	session, recorder := detectingSession(t, quietConfig(), enrolledEmployee(t, "emp1"))

	// a perfect match with zero liveness evidence must not check in
	session.finishTick(1, nil, acceptedResult("emp1"))

	if recorder.count() != 0 {
		t.Error("match without liveness must not record a check-in")
	}
	if got := session.Status().State; got != STATE_DETECTING {
		t.Errorf("state = %s, want still %s", got, STATE_DETECTING)
	}
	if session.log.Len() != 0 {
		t.Error("display log must stay empty")
	}
}

func TestFinishTickAccepts(t *testing.T) {
	session, recorder := detectingSession(t, quietConfig(), enrolledEmployee(t, "emp1"))
	makeLive(t, session)

	session.finishTick(1, nil, acceptedResult("emp1"))

	if got := session.Status().State; got != STATE_MATCHED {
		t.Fatalf("state = %s, want %s", got, STATE_MATCHED)
	}
	waitFor(t, "async record", func() bool { return recorder.count() == 1 })
	if session.log.Len() != 1 {
		t.Error("accepted check-in should land in the display log")
	}
	if !session.cooldowns.Active("emp1", time.Hour) {
		t.Error("accepted identity should be stamped into the cooldown registry")
	}
	if !session.Status().Overlay.Accepted {
		t.Error("overlay should flag the accepted match")
	}
}

func TestFinishTickIdentityCooldown(t *testing.T) {
	session, recorder := detectingSession(t, quietConfig(), enrolledEmployee(t, "emp1"))
	makeLive(t, session)

	session.finishTick(1, nil, acceptedResult("emp1"))
	waitFor(t, "first record", func() bool { return recorder.count() == 1 })

	// force the loop back to detecting; the identity stamp must still hold
	session.mu.Lock()
	session.state = STATE_DETECTING
	session.mu.Unlock()
	makeLive(t, session)

	session.finishTick(1, nil, acceptedResult("emp1"))

	time.Sleep(20 * time.Millisecond)
	if got := recorder.count(); got != 1 {
		t.Errorf("records = %d, want 1; identity cooldown must suppress the repeat", got)
	}
	if got := session.Status().State; got != STATE_DETECTING {
		t.Errorf("state = %s, suppressed tick should keep detecting", got)
	}
}

func TestFinishTickDebounce(t *testing.T) {
	config := quietConfig()
	config.DebounceTicks = 3
	session, recorder := detectingSession(t, config, enrolledEmployee(t, "emp1"))
	makeLive(t, session)

	session.finishTick(1, nil, acceptedResult("emp1"))
	session.finishTick(1, nil, acceptedResult("emp1"))
	if recorder.count() != 0 || session.Status().State != STATE_DETECTING {
		t.Fatal("two consecutive matches must not satisfy a three-tick debounce")
	}

	// an absent tick resets the streak
	session.finishTick(1, nil, nil)
	session.finishTick(1, nil, acceptedResult("emp1"))
	session.finishTick(1, nil, acceptedResult("emp1"))
	if recorder.count() != 0 {
		t.Fatal("streak must restart after the identity goes absent")
	}

	session.finishTick(1, nil, acceptedResult("emp1"))
	waitFor(t, "debounced accept", func() bool { return recorder.count() == 1 })
	if got := session.Status().State; got != STATE_MATCHED {
		t.Errorf("state = %s, want %s after third consecutive match", got, STATE_MATCHED)
	}
}

func TestFinishTickDebounceSurvivesLivenessDip(t *testing.T) {
	config := quietConfig()
	config.DebounceTicks = 3
	session, recorder := detectingSession(t, config, enrolledEmployee(t, "emp1"))

	// two matched ticks land before any liveness evidence exists
	session.finishTick(1, nil, acceptedResult("emp1"))
	session.finishTick(1, nil, acceptedResult("emp1"))
	if recorder.count() != 0 {
		t.Fatal("nothing should record before the detector reads live")
	}

	makeLive(t, session)
	session.finishTick(1, nil, acceptedResult("emp1"))

	waitFor(t, "accept on the third consecutive match", func() bool { return recorder.count() == 1 })
	if got := session.Status().State; got != STATE_MATCHED {
		t.Errorf("state = %s, want %s; the early ticks must count toward the streak", got, STATE_MATCHED)
	}
}

func TestRestartFromErrorResetsSessionState(t *testing.T) {
	session, _ := detectingSession(t, quietConfig(), enrolledEmployee(t, "emp1"))
	makeLive(t, session)
	session.cooldowns.Stamp("emp1")

	session.fail(1, "camera stream failure", errors.New("stream torn down"))
	if got := session.Status().State; got != STATE_ERROR {
		t.Fatalf("state after fail = %s, want %s", got, STATE_ERROR)
	}

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start() after error = %v", err)
	}
	defer session.Stop()

	if session.liveness.IsLive() {
		t.Error("restarted session must not inherit liveness evidence")
	}
	if got := session.liveness.Scores().FrameCount; got != 0 {
		t.Errorf("FrameCount after restart = %d, want 0", got)
	}
	if session.cooldowns.Active("emp1", time.Hour) {
		t.Error("cooldown stamp from the previous activation must not survive a restart")
	}
	if session.Status().Overlay.Accepted || session.Status().Overlay.Label != "" {
		t.Error("overlay from the previous activation must be cleared")
	}
}

func TestInFlightResultDiscardedAfterStop(t *testing.T) {
	session, recorder := detectingSession(t, quietConfig(), enrolledEmployee(t, "emp1"))
	makeLive(t, session)

	gen := session.generation
	if err := session.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// a tick that was computing when Stop ran delivers its result late
	session.finishTick(gen, nil, acceptedResult("emp1"))

	time.Sleep(20 * time.Millisecond)
	if recorder.count() != 0 {
		t.Error("stale tick result must be discarded after Stop")
	}
	if got := session.Status().State; got != STATE_IDLE {
		t.Errorf("state = %s, want %s", got, STATE_IDLE)
	}
}

func TestApplyEmployeesFilters(t *testing.T) {
	now := time.Now()
	enrolled := enrolledEmployee(t, "active")
	inactive := enrolledEmployee(t, "inactive")
	inactive.Active = false
	deleted := enrolledEmployee(t, "deleted")
	deleted.DeletedAt = &now
	unenrolled := entities.Employee{ID: "blank", FirstName: "No", LastName: "Face", Active: true}

	session, _ := detectingSession(t, quietConfig(), enrolled, inactive, deleted, unenrolled)

	if len(session.candidates) != 1 || session.candidates[0].EmployeeID != "active" {
		t.Errorf("candidates = %+v, want only the active enrolled employee", session.candidates)
	}
	if session.Status().EmployeeCount != 1 {
		t.Errorf("EmployeeCount = %d, want 1", session.Status().EmployeeCount)
	}
}

func TestManagerSingleSession(t *testing.T) {
	build := func() *Session {
		return NewSession(
			NewPushFrameSource(),
			&fakeStore{employees: []entities.Employee{enrolledEmployee(t, "emp1")}},
			&fakeRecorder{},
			quietConfig(),
		)
	}
	manager := NewManager(build)

	if err := manager.Stop(); err != ErrSessionNotActive {
		t.Errorf("Stop() before any start = %v, want ErrSessionNotActive", err)
	}

	first, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if manager.Current() != first {
		t.Error("Current() should return the running session")
	}

	if _, err := manager.Start(context.Background()); err != ErrSessionActive {
		t.Errorf("concurrent Start() error = %v, want ErrSessionActive", err)
	}

	if err := manager.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, err := manager.Start(context.Background()); err != nil {
		t.Errorf("restart after Stop error = %v", err)
	}
	manager.Stop()
}
