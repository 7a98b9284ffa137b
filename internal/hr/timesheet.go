package hr

import (
	"fmt"
	"strings"
	"time"
)

// TimesheetStatus tracks the lifecycle of a timesheet entry.
type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetSubmitted TimesheetStatus = "submitted"
	TimesheetApproved  TimesheetStatus = "approved"
	TimesheetRejected  TimesheetStatus = "rejected"
)

// TimesheetEntry records hours an employee worked on a project for one day.
type TimesheetEntry struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId"`
	Date        time.Time       `json:"date"`
	Hours       float64         `json:"hours"`
	ProjectCode string          `json:"projectCode"`
	Description string          `json:"description,omitempty"`
	Status      TimesheetStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks the entry against the timesheet rules: positive hours capped
// at 24, a project code, and no future-dated entries.
func (t *TimesheetEntry) Validate() error {
	if t.EmployeeID == "" {
		return fmt.Errorf("timesheet entry: employee id is required")
	}
	if t.Hours <= 0 {
		return fmt.Errorf("timesheet entry: hours must be positive, got %v", t.Hours)
	}
	if t.Hours > 24 {
		return fmt.Errorf("timesheet entry: hours cannot exceed 24, got %v", t.Hours)
	}
	if strings.TrimSpace(t.ProjectCode) == "" {
		return fmt.Errorf("timesheet entry: project code is required")
	}
	if t.Date.After(endOfToday()) {
		return fmt.Errorf("timesheet entry: date %s is in the future", t.Date.Format("2006-01-02"))
	}
	return nil
}

// Submit moves a draft entry to submitted. Entries in any other status are
// left unchanged.
func (t *TimesheetEntry) Submit() {
	if t.Status == TimesheetDraft {
		t.Status = TimesheetSubmitted
	}
}

func endOfToday() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.Local)
}
