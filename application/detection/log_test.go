package detection

import (
	"fmt"
	"testing"
	"time"
)

func TestCheckInLogNewestFirst(t *testing.T) {
	log := NewCheckInLog(50)

	for i := 0; i < 3; i++ {
		log.Append(CheckInLogEntry{EmployeeID: fmt.Sprintf("emp%d", i), Timestamp: time.Now()})
	}

	recent := log.Recent()
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].EmployeeID != "emp2" || recent[2].EmployeeID != "emp0" {
		t.Errorf("order = %s..%s, want newest first", recent[0].EmployeeID, recent[2].EmployeeID)
	}
}

func TestCheckInLogBounded(t *testing.T) {
	log := NewCheckInLog(5)

	for i := 0; i < 20; i++ {
		log.Append(CheckInLogEntry{EmployeeID: fmt.Sprintf("emp%d", i)})
	}

	recent := log.Recent()
	if len(recent) != 5 {
		t.Fatalf("len = %d, want capped at 5", len(recent))
	}
	if recent[0].EmployeeID != "emp19" {
		t.Errorf("newest = %s, want emp19", recent[0].EmployeeID)
	}
	if recent[4].EmployeeID != "emp15" {
		t.Errorf("oldest retained = %s, want emp15", recent[4].EmployeeID)
	}
}

func TestCheckInLogCopyIsolation(t *testing.T) {
	log := NewCheckInLog(10)
	log.Append(CheckInLogEntry{EmployeeID: "emp1"})

	snapshot := log.Recent()
	snapshot[0].EmployeeID = "tampered"

	if log.Recent()[0].EmployeeID != "emp1" {
		t.Error("mutating a snapshot must not touch the log")
	}
}
