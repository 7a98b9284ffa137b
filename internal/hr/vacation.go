package hr

import (
	"fmt"
	"time"
)

// VacationStatus tracks where a vacation request sits in the approval flow.
type VacationStatus string

const (
	VacationPending   VacationStatus = "pending"
	VacationApproved  VacationStatus = "approved"
	VacationRejected  VacationStatus = "rejected"
	VacationCancelled VacationStatus = "cancelled"
)

// VacationRequest is a request for time off submitted by an employee.
type VacationRequest struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employeeId"`
	StartDate  time.Time      `json:"startDate"`
	EndDate    time.Time      `json:"endDate"`
	Reason     string         `json:"reason"`
	Status     VacationStatus `json:"status"`
	ApprovedBy string         `json:"approvedBy,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
}

// TotalDays returns the number of vacation days, inclusive of both endpoints.
func (v *VacationRequest) TotalDays() int {
	return int(v.EndDate.Sub(v.StartDate).Hours()/24) + 1
}

// Validate reports whether the request covers a coherent date range.
func (v *VacationRequest) Validate() error {
	if v.EmployeeID == "" {
		return fmt.Errorf("vacation request: employee id is required")
	}
	if v.EndDate.Before(v.StartDate) {
		return fmt.Errorf("vacation request: end date %s precedes start date %s",
			v.EndDate.Format("2006-01-02"), v.StartDate.Format("2006-01-02"))
	}
	return nil
}

// Approve marks the request approved and records the approver.
func (v *VacationRequest) Approve(approverID string) {
	v.Status = VacationApproved
	v.ApprovedBy = approverID
	now := time.Now().UTC()
	v.UpdatedAt = &now
}

// Reject marks the request rejected and records who rejected it.
func (v *VacationRequest) Reject(approverID string) {
	v.Status = VacationRejected
	v.ApprovedBy = approverID
	now := time.Now().UTC()
	v.UpdatedAt = &now
}
