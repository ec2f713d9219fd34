package db

import (
	"errors"
	"fmt"

	"github.com/alwiirfani/chemicals-sub000/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrEmptyItems    = errors.New("borrowing needs at least one item")
	ErrDuplicateItem = errors.New("chemical listed more than once in items")
)

// InvalidTransitionError is returned when an action is requested against a
// borrowing whose current status is not the legal predecessor.
type InvalidTransitionError struct {
	Current models.BorrowingStatus
	Action  models.BorrowingAction
}

func (e *InvalidTransitionError) Error() string {
	t, ok := models.Transitions[e.Action]
	if !ok {
		return fmt.Sprintf("unknown action %q", e.Action)
	}
	return fmt.Sprintf("only %s borrowings can be %s (current status %s)", t.From, e.Action, e.Current)
}

// InsufficientStockError names the chemical that blocked an approval.
type InsufficientStockError struct {
	ChemicalID   string
	ChemicalName string
	Available    float64
	Requested    float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %.3f, requested %.3f",
		e.ChemicalName, e.Available, e.Requested)
}

// ReturnItemError rejects one entry of a return payload; the whole return
// rolls back.
type ReturnItemError struct {
	ItemID string
	Reason string
}

func (e *ReturnItemError) Error() string {
	return fmt.Sprintf("returned item %s: %s", e.ItemID, e.Reason)
}
