package ledger

import (
	"cmp"
	"slices"
)

// Project annotates every movement with the balance right after it and returns
// the entries newest first.
//
// The fold starts from zero, so running balances are exact only when movs is the
// full active history of the account. Given a truncated window they are an
// approximation; callers must flag them as such.
//
// Voided movements must be filtered out beforehand with Active. A malformed
// movement aborts the whole projection.
func Project(movs []Movement) ([]Entry, error) {
	for _, m := range movs {
		if err := Validate(m); err != nil {
			return nil, err
		}
	}

	entries := make([]Entry, len(movs))
	for i, m := range movs {
		entries[i] = Entry{Movement: m}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return chronological(a.Movement, b.Movement)
	})

	var balance int64

	for i := range entries {
		balance += entries[i].Delta()
		entries[i].RunningBalance = balance
	}

	slices.Reverse(entries)

	return entries, nil
}

// Total folds movs from zero and returns the final balance.
func Total(movs []Movement) (int64, error) {
	var total int64

	for _, m := range movs {
		if err := Validate(m); err != nil {
			return 0, err
		}

		total += m.Delta()
	}

	return total, nil
}

// Chronological returns a copy of entries ordered oldest first.
func Chronological(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortFunc(out, func(a, b Entry) int {
		return chronological(a.Movement, b.Movement)
	})

	return out
}

// chronological orders by date, then creation time. The id is a last resort so
// that identical timestamps still sort the same way on every run.
func chronological(a, b Movement) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}

	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID.String(), b.ID.String())
}
