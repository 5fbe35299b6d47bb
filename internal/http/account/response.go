package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	httpmovement "github.com/servimas/cortineros/internal/http/movement"
	"github.com/servimas/cortineros/internal/importer"
)

type accountResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Zone             string    `json:"zone"`
	Phone            string    `json:"phone,omitempty"`
	CreditLimit      int64     `json:"credit_limit"`
	Balance          int64     `json:"balance"`
	OverLimit        bool      `json:"over_limit"`
	Active           bool      `json:"active"`
	LastMovementDate string    `json:"last_movement_date,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ledgerResponse struct {
	Account  accountResponse              `json:"account"`
	Entries  []httpmovement.EntryResponse `json:"entries"`
	Complete bool                         `json:"complete"`
}

type driftResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	InSync    bool      `json:"in_sync"`
	Stored    int64     `json:"stored"`
	Computed  int64     `json:"computed"`
	Mismatch  int64     `json:"mismatch"`
}

type importResponse struct {
	Profile     string `json:"profile"`
	Charset     string `json:"charset"`
	Imported    int    `json:"imported"`
	Deliveries  int    `json:"deliveries"`
	Payments    int    `json:"payments"`
	Adjustments int    `json:"adjustments"`
	Net         int64  `json:"net"`
	DryRun      bool   `json:"dry_run"`
}

func toResponse(a *account.Account) accountResponse {
	resp := accountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Zone:        a.Zone,
		Phone:       a.Phone,
		CreditLimit: a.CreditLimit,
		Balance:     a.Balance,
		OverLimit:   a.OverLimit(),
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	if !a.LastMovementDate.IsZero() {
		resp.LastMovementDate = a.LastMovementDate.Format(time.DateOnly)
	}

	return resp
}

func toResponseList(accs []*account.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		out = append(out, toResponse(a))
	}

	return out
}

func toLedgerResponse(st *account.Statement) ledgerResponse {
	return ledgerResponse{
		Account:  toResponse(st.Account),
		Entries:  httpmovement.ToEntryList(st.Entries),
		Complete: st.Complete,
	}
}

func toDriftResponse(rec *account.Reconciliation) driftResponse {
	resp := driftResponse{
		AccountID: rec.Account.ID,
		InSync:    rec.Drift == nil,
		Stored:    rec.Account.Balance,
		Computed:  rec.Computed,
	}

	if rec.Drift != nil {
		resp.Mismatch = rec.Drift.Mismatch()
	}

	return resp
}

func toImportResponse(rep *importer.Report, dryRun bool) importResponse {
	return importResponse{
		Profile:     rep.Profile,
		Charset:     string(rep.Charset),
		Imported:    len(rep.Movements),
		Deliveries:  rep.Deliveries,
		Payments:    rep.Payments,
		Adjustments: rep.Adjustments,
		Net:         rep.Net,
		DryRun:      dryRun,
	}
}
