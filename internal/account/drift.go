package account

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/ledger"
)

// DriftWarning reports a stored balance that disagrees with the movement log.
// It is informational: the stored value belongs to the write path and is never
// corrected here.
type DriftWarning struct {
	AccountID uuid.UUID
	Stored    int64
	Computed  int64
}

// Difference is how far the stored balance sits from the folded one.
func (d DriftWarning) Difference() int64 {
	return d.Stored - d.Computed
}

// Mismatch is the absolute size of the drift.
func (d DriftWarning) Mismatch() int64 {
	if diff := d.Difference(); diff < 0 {
		return -diff
	}

	return d.Difference()
}

func (d DriftWarning) String() string {
	return fmt.Sprintf("account %s: stored balance %d, movements fold to %d (mismatch %d)",
		d.AccountID, d.Stored, d.Computed, d.Mismatch())
}

// CheckBalance folds the full history of acc and compares it with the stored
// balance. It returns nil when both agree. Voided movements and movements of
// other accounts are ignored.
func CheckBalance(acc *Account, history []ledger.Movement) (*DriftWarning, error) {
	own := make([]ledger.Movement, 0, len(history))

	for _, m := range ledger.Active(history) {
		if m.AccountID == acc.ID {
			own = append(own, m)
		}
	}

	computed, err := ledger.Total(own)
	if err != nil {
		return nil, fmt.Errorf("folding history: %w", err)
	}

	if computed == acc.Balance {
		return nil, nil
	}

	return &DriftWarning{AccountID: acc.ID, Stored: acc.Balance, Computed: computed}, nil
}
