// Package layout computes page budgets and distributes measured resume sections onto pages.
package layout

import "fmt"

// UnknownTemplateError is returned when a template id is not registered.
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template: %q", e.ID)
}

// BudgetError represents an invalid page budget.
type BudgetError struct {
	Message string
	Cause   error
}

func (e *BudgetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("page budget error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("page budget error: %s", e.Message)
}

func (e *BudgetError) Unwrap() error {
	return e.Cause
}
