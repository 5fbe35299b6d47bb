package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	httpmovement "github.com/servimas/cortineros/internal/http/movement"
	"github.com/servimas/cortineros/internal/http/respond"
)

type Handler struct {
	accounts *account.Service
}

func NewHandler(accounts *account.Service) *Handler {
	return &Handler{accounts: accounts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type debtorResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Zone             string    `json:"zone"`
	Balance          int64     `json:"balance"`
	OverLimit        bool      `json:"over_limit"`
	LastMovementDate string    `json:"last_movement_date,omitempty"`
}

type summaryResponse struct {
	TotalDebt        int64                   `json:"total_debt"`
	Accounts         int                     `json:"accounts"`
	Owing            int                     `json:"owing"`
	OverLimit        int                     `json:"over_limit"`
	TopDebtors       []debtorResponse        `json:"top_debtors"`
	RecentPayments   []httpmovement.Response `json:"recent_payments"`
	RecentDeliveries []httpmovement.Response `json:"recent_deliveries"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.accounts.Summary(r.Context())
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := summaryResponse{
		TotalDebt:        sum.TotalDebt,
		Accounts:         sum.Accounts,
		Owing:            sum.Owing,
		OverLimit:        sum.OverLimit,
		TopDebtors:       make([]debtorResponse, 0, len(sum.TopDebtors)),
		RecentPayments:   httpmovement.ToResponseList(sum.RecentEntries.Payments),
		RecentDeliveries: httpmovement.ToResponseList(sum.RecentEntries.Deliveries),
	}

	for _, a := range sum.TopDebtors {
		d := debtorResponse{
			ID:        a.ID,
			Name:      a.Name,
			Zone:      a.Zone,
			Balance:   a.Balance,
			OverLimit: a.OverLimit(),
		}

		if !a.LastMovementDate.IsZero() {
			d.LastMovementDate = a.LastMovementDate.Format(time.DateOnly)
		}

		resp.TopDebtors = append(resp.TopDebtors, d)
	}

	respond.JSON(w, http.StatusOK, resp)
}
