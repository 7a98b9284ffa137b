package hr

import (
	"fmt"
	"strings"
)

// ProcedureStep is a single numbered step within a procedure.
type ProcedureStep struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
}

// Procedure is a step-by-step HR process, such as requesting vacation or
// correcting a timesheet.
type Procedure struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	Steps           []ProcedureStep `json:"steps"`
	RelatedPolicies string          `json:"relatedPolicies,omitempty"`
}

// Validate checks that the procedure has a title, a category, and at least
// one step with a description.
func (p *Procedure) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("procedure: title is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("procedure: category is required")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("procedure %q: at least one step is required", p.Title)
	}
	for _, s := range p.Steps {
		if strings.TrimSpace(s.Description) == "" {
			return fmt.Errorf("procedure %q: step %d has no description", p.Title, s.StepNumber)
		}
	}
	return nil
}

// matches reports whether the search term appears in the title, category, or
// any step description. Matching is case-insensitive.
func (p *Procedure) matches(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Category), term) {
		return true
	}
	for _, s := range p.Steps {
		if strings.Contains(strings.ToLower(s.Description), term) {
			return true
		}
	}
	return false
}
