package detection

import "sync"

// CheckInLog is a bounded, newest-first display log of accepted check-ins.
type CheckInLog struct {
	mu       sync.Mutex
	entries  []CheckInLogEntry
	capacity int
}

func NewCheckInLog(capacity int) *CheckInLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &CheckInLog{capacity: capacity}
}

// Append prepends the entry, evicting the oldest past capacity.
func (cl *CheckInLog) Append(entry CheckInLogEntry) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.entries = append([]CheckInLogEntry{entry}, cl.entries...)
	if len(cl.entries) > cl.capacity {
		cl.entries = cl.entries[:cl.capacity]
	}
}

// Recent returns a copy of the log, newest first.
func (cl *CheckInLog) Recent() []CheckInLogEntry {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]CheckInLogEntry, len(cl.entries))
	copy(out, cl.entries)
	return out
}

// Len reports the current entry count.
func (cl *CheckInLog) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.entries)
}
