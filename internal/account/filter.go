package account

import (
	"slices"
	"strings"
	"time"
)

// Filter narrows the account list the way the office looks at it.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterOwing          Filter = "owing"
	FilterSettled        Filter = "settled"
	FilterHighDebt       Filter = "high_debt"
	FilterRecentActivity Filter = "recent"
)

const (
	// HighDebtThreshold is the balance below which a debt counts as high.
	HighDebtThreshold int64 = -50000
	recentActivity          = 3 * 24 * time.Hour
	topDebtors              = 5
)

func (f Filter) Valid() bool {
	switch f {
	case "", FilterAll, FilterOwing, FilterSettled, FilterHighDebt, FilterRecentActivity:
		return true
	}

	return false
}

type ListFilter struct {
	Filter Filter
	// Query matches name or zone, case-insensitive.
	Query string
}

// Apply filters accs and sorts the result by balance, largest debt first.
func (lf ListFilter) Apply(accs []*Account, now time.Time) []*Account {
	q := strings.ToLower(strings.TrimSpace(lf.Query))
	out := make([]*Account, 0, len(accs))

	for _, a := range accs {
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) && !strings.Contains(strings.ToLower(a.Zone), q) {
			continue
		}

		if !lf.Filter.match(a, now) {
			continue
		}

		out = append(out, a)
	}

	slices.SortStableFunc(out, func(a, b *Account) int {
		switch {
		case a.Balance < b.Balance:
			return -1
		case a.Balance > b.Balance:
			return 1
		}

		return strings.Compare(a.Name, b.Name)
	})

	return out
}

func (f Filter) match(a *Account, now time.Time) bool {
	switch f {
	case FilterOwing:
		return a.Balance < 0
	case FilterSettled:
		return a.Balance >= 0
	case FilterHighDebt:
		return a.Balance < HighDebtThreshold
	case FilterRecentActivity:
		return !a.LastMovementDate.Before(now.Add(-recentActivity))
	}

	return true
}

// Summary is the dashboard view over all active accounts.
type Summary struct {
	TotalDebt     int64
	Accounts      int
	Owing         int
	OverLimit     int
	TopDebtors    []*Account
	RecentEntries RecentActivity
}

func summarize(accs []*Account) Summary {
	var s Summary

	s.Accounts = len(accs)

	debtors := make([]*Account, 0, len(accs))

	for _, a := range accs {
		if !a.Owes() {
			continue
		}

		s.TotalDebt += -a.Balance
		s.Owing++

		if a.OverLimit() {
			s.OverLimit++
		}

		debtors = append(debtors, a)
	}

	debtors = ListFilter{Filter: FilterOwing}.Apply(debtors, time.Time{})
	s.TopDebtors = debtors[:min(len(debtors), topDebtors)]

	return s
}
