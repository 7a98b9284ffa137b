package hr

import "time"

// Stores bundles the three record stores so they can be seeded and passed
// around together.
type Stores struct {
	Vacations  *VacationStore
	Timesheets *TimesheetStore
	Procedures *ProcedureStore
}

// NewStores returns empty stores for all three record types.
func NewStores() *Stores {
	return &Stores{
		Vacations:  NewVacationStore(),
		Timesheets: NewTimesheetStore(),
		Procedures: NewProcedureStore(),
	}
}

// Seed loads the development fixtures into all three stores.
func (s *Stores) Seed() error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	vacations := []VacationRequest{
		{
			ID:         "vac-001",
			EmployeeID: "emp-001",
			StartDate:  today.AddDate(0, 0, 7),
			EndDate:    today.AddDate(0, 0, 11),
			Reason:     "Family vacation to the beach",
			Status:     VacationPending,
			CreatedAt:  now.AddDate(0, 0, -2),
		},
		{
			ID:         "vac-002",
			EmployeeID: "emp-002",
			StartDate:  today.AddDate(0, 0, 14),
			EndDate:    today.AddDate(0, 0, 18),
			Reason:     "Wedding anniversary",
			Status:     VacationApproved,
			ApprovedBy: "admin@hr.com",
			CreatedAt:  now.AddDate(0, 0, -5),
			UpdatedAt:  timePtr(now.AddDate(0, 0, -3)),
		},
		{
			ID:         "vac-003",
			EmployeeID: "emp-001",
			StartDate:  today.AddDate(0, 2, 0),
			EndDate:    today.AddDate(0, 2, 6),
			Reason:     "Summer vacation",
			Status:     VacationPending,
			CreatedAt:  now.AddDate(0, 0, -1),
		},
		{
			ID:         "vac-004",
			EmployeeID: "emp-003",
			StartDate:  today.AddDate(0, 0, -10),
			EndDate:    today.AddDate(0, 0, -8),
			Reason:     "Personal reasons",
			Status:     VacationRejected,
			ApprovedBy: "admin@hr.com",
			CreatedAt:  now.AddDate(0, 0, -12),
			UpdatedAt:  timePtr(now.AddDate(0, 0, -11)),
		},
	}

	entries := []TimesheetEntry{
		{
			ID:          "ts-001",
			EmployeeID:  "emp-001",
			Date:        today.AddDate(0, 0, -1),
			Hours:       8.0,
			ProjectCode: "PROJ-001",
			Description: "Backend API development",
			Status:      TimesheetDraft,
			CreatedAt:   now,
		},
		{
			ID:          "ts-002",
			EmployeeID:  "emp-001",
			Date:        today.AddDate(0, 0, -2),
			Hours:       7.5,
			ProjectCode: "PROJ-001",
			Description: "Code review and testing",
			Status:      TimesheetSubmitted,
			CreatedAt:   now.AddDate(0, 0, -1),
		},
		{
			ID:          "ts-003",
			EmployeeID:  "emp-002",
			Date:        today.AddDate(0, 0, -1),
			Hours:       8.0,
			ProjectCode: "PROJ-002",
			Description: "Frontend development",
			Status:      TimesheetApproved,
			CreatedAt:   now.AddDate(0, 0, -1),
		},
		{
			ID:          "ts-004",
			EmployeeID:  "emp-001",
			Date:        today.AddDate(0, 0, -3),
			Hours:       6.5,
			ProjectCode: "PROJ-003",
			Description: "Bug fixes and maintenance",
			Status:      TimesheetSubmitted,
			CreatedAt:   now.AddDate(0, 0, -2),
		},
		{
			ID:          "ts-005",
			EmployeeID:  "emp-003",
			Date:        today.AddDate(0, 0, -1),
			Hours:       8.0,
			ProjectCode: "PROJ-001",
			Description: "Database optimization",
			Status:      TimesheetDraft,
			CreatedAt:   now,
		},
	}

	procedures := []Procedure{
		{
			ID:       "proc-001",
			Title:    "How to Request Vacation Time",
			Category: "Vacation",
			Steps: []ProcedureStep{
				{StepNumber: 1, Description: "Log in to the HR portal"},
				{StepNumber: 2, Description: "Navigate to the Vacation Request section"},
				{StepNumber: 3, Description: "Select your desired vacation dates"},
				{StepNumber: 4, Description: "Provide a brief reason for your time off"},
				{StepNumber: 5, Description: "Submit the request for manager approval"},
				{StepNumber: 6, Description: "Wait for email confirmation of approval or denial"},
			},
			RelatedPolicies: "Employee Vacation Policy 2025",
		},
		{
			ID:       "proc-002",
			Title:    "Submitting Weekly Timesheets",
			Category: "Timesheet",
			Steps: []ProcedureStep{
				{StepNumber: 1, Description: "Access the timesheet system before the weekly deadline"},
				{StepNumber: 2, Description: "Enter hours worked for each day of the week"},
				{StepNumber: 3, Description: "Assign hours to the correct project codes"},
				{StepNumber: 4, Description: "Add descriptions for all entries"},
				{StepNumber: 5, Description: "Review all entries for accuracy"},
				{StepNumber: 6, Description: "Submit the timesheet for approval"},
			},
			RelatedPolicies: "Time Tracking and Reporting Policy",
		},
		{
			ID:       "proc-003",
			Title:    "Requesting a Sick Day",
			Category: "Vacation",
			Steps: []ProcedureStep{
				{StepNumber: 1, Description: "Notify your manager as soon as possible"},
				{StepNumber: 2, Description: "Log the sick day in the HR system"},
				{StepNumber: 3, Description: "Provide a doctor's note if absent for more than 3 days"},
			},
			RelatedPolicies: "Sick Leave Policy 2025",
		},
		{
			ID:       "proc-004",
			Title:    "Correcting Timesheet Errors",
			Category: "Timesheet",
			Steps: []ProcedureStep{
				{StepNumber: 1, Description: "Contact your manager to explain the error"},
				{StepNumber: 2, Description: "Access the timesheet correction form"},
				{StepNumber: 3, Description: "Provide details of the original entry and correction needed"},
				{StepNumber: 4, Description: "Submit for manager and HR approval"},
			},
			RelatedPolicies: "Time Tracking and Reporting Policy",
		},
		{
			ID:       "proc-005",
			Title:    "Annual Performance Review Process",
			Category: "Performance",
			Steps: []ProcedureStep{
				{StepNumber: 1, Description: "Complete your self-assessment form"},
				{StepNumber: 2, Description: "Schedule a meeting with your manager"},
				{StepNumber: 3, Description: "Discuss achievements and areas for improvement"},
				{StepNumber: 4, Description: "Set goals for the upcoming year"},
				{StepNumber: 5, Description: "Sign the performance review document"},
			},
			RelatedPolicies: "Performance Management Policy",
		},
	}

	for _, v := range vacations {
		if _, err := s.Vacations.Add(v); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if _, err := s.Timesheets.Add(e); err != nil {
			return err
		}
	}
	for _, p := range procedures {
		if _, err := s.Procedures.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
