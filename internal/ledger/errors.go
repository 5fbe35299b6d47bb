package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidMovement = errors.New("invalid movement")

// InvalidMovementError identifies the record that stopped a projection.
type InvalidMovementError struct {
	ID     uuid.UUID
	Reason string
}

func (e *InvalidMovementError) Error() string {
	return fmt.Sprintf("movement %s: %s", e.ID, e.Reason)
}

func (e *InvalidMovementError) Unwrap() error {
	return ErrInvalidMovement
}

// Validate reports the first reason m cannot take part in a fold.
func Validate(m Movement) error {
	switch {
	case !m.Kind.Valid():
		return &InvalidMovementError{ID: m.ID, Reason: fmt.Sprintf("unknown kind %q", m.Kind)}
	case m.Kind != KindAdjustment && m.Amount < 0:
		return &InvalidMovementError{ID: m.ID, Reason: fmt.Sprintf("negative amount %d", m.Amount)}
	case m.Date.IsZero():
		return &InvalidMovementError{ID: m.ID, Reason: "missing date"}
	case m.State() == StateVoided:
		return &InvalidMovementError{ID: m.ID, Reason: "voided movement"}
	}

	return nil
}
