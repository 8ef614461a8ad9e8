package detection

import (
	"context"
	"errors"
	"sync"

	"facegate.io/infrastructure/biometric/types"
)

var ErrSourceClosed = errors.New("frame source is closed")

// PushFrameSource is a latest-frame mailbox. An external producer, the
// frame-push HTTP endpoint in this deployment, pushes frames as they arrive
// and each tick consumes at most the newest one. A frame is handed out only
// once so a stale frame is never matched twice.
type PushFrameSource struct {
	mu     sync.Mutex
	frame  *types.Frame
	closed bool
}

func NewPushFrameSource() *PushFrameSource {
	return &PushFrameSource{}
}

// Push replaces the pending frame with a newer one.
func (s *PushFrameSource) Push(frame *types.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.frame = frame
}

func (s *PushFrameSource) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	s.frame = nil
	return nil
}

// Capture returns the pending frame and clears the mailbox. An empty mailbox
// is a soft no-face condition, not a stream failure.
func (s *PushFrameSource) Capture(ctx context.Context) (*types.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.frame == nil {
		return nil, types.ErrNoFaceDetected
	}
	frame := s.frame
	s.frame = nil
	return frame, nil
}

func (s *PushFrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}
