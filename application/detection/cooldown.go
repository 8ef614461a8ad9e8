package detection

import (
	"sync"
	"time"
)

// CooldownRegistry tracks the last accepted check-in time per identity so a
// person standing in front of the camera does not check in once per tick.
type CooldownRegistry struct {
	mu     sync.Mutex
	stamps map[string]time.Time
}

func NewCooldownRegistry() *CooldownRegistry {
	return &CooldownRegistry{stamps: map[string]time.Time{}}
}

// Stamp records an accepted check-in for the identity at the current time.
func (cr *CooldownRegistry) Stamp(employeeID string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.stamps[employeeID] = time.Now()
}

// Active reports whether the identity is still inside its cooldown window.
func (cr *CooldownRegistry) Active(employeeID string, window time.Duration) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	stamp, ok := cr.stamps[employeeID]
	if !ok {
		return false
	}
	return time.Since(stamp) < window
}

// Reset forgets all stamps.
func (cr *CooldownRegistry) Reset() {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.stamps = map[string]time.Time{}
}
