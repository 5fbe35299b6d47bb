package account

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/auth"
	"github.com/servimas/cortineros/internal/export"
	httpmovement "github.com/servimas/cortineros/internal/http/movement"
	"github.com/servimas/cortineros/internal/http/respond"
	"github.com/servimas/cortineros/internal/importer"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

const maxUploadSize = 10 << 20

type Handler struct {
	accounts  *account.Service
	movements *movement.Service
	imports   *importer.Service
	exports   *export.Service
}

func NewHandler(accounts *account.Service, movements *movement.Service, imports *importer.Service, exports *export.Service) *Handler {
	return &Handler{
		accounts:  accounts,
		movements: movements,
		imports:   imports,
		exports:   exports,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(auth.Require(auth.CapManageAccounts)).Post("/", h.create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/movements", h.ledger)
		r.Get("/statement", h.statement)
		r.Get("/reconcile", h.reconcile)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require(auth.CapManageAccounts))
			r.Patch("/", h.update)
			r.Delete("/", h.deactivate)
			r.Post("/import", h.importHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require(auth.CapRecordMovements))
			r.Post("/payments", h.record(ledger.KindPayment))
			r.Post("/deliveries", h.record(ledger.KindDelivery))
			r.Post("/adjustments", h.record(ledger.KindAdjustment))
		})
	})
}

func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := account.ListFilter{
		Filter: account.Filter(r.URL.Query().Get("filter")),
		Query:  r.URL.Query().Get("q"),
	}

	if !filter.Filter.Valid() {
		respond.ErrorDetails(w, http.StatusBadRequest, "unknown filter", map[string]any{
			"allowed": []account.Filter{
				account.FilterAll, account.FilterOwing, account.FilterSettled,
				account.FilterHighDebt, account.FilterRecentActivity,
			},
		})

		return
	}

	accs, err := h.accounts.List(r.Context(), filter)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(accs))
}

type createAccountRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Zone        string `json:"zone" validate:"required,min=2"`
	Phone       string `json:"phone"`
	CreditLimit int64  `json:"credit_limit" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	a, err := h.accounts.Create(r.Context(), account.CreateParams{
		Name:        req.Name,
		Zone:        req.Zone,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	a, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

type updateAccountRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Zone        *string `json:"zone,omitempty" validate:"omitempty,min=2"`
	Phone       *string `json:"phone,omitempty"`
	CreditLimit *int64  `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req updateAccountRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	a, err := h.accounts.Update(r.Context(), id, account.UpdateParams{
		Name:        req.Name,
		Zone:        req.Zone,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Deactivate(r.Context(), id); err != nil {
		respond.Err(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	st, err := h.accounts.Ledger(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toLedgerResponse(st))
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exports.Statement(r.Context(), &buf, id); err != nil {
		respond.Err(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	rec, err := h.accounts.Reconcile(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDriftResponse(rec))
}

type recordRequest struct {
	Amount        int64  `json:"amount" validate:"ne=0"`
	Description   string `json:"description" validate:"max=200"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=efectivo transferencia cheque mercadopago"`
	Note          string `json:"note" validate:"max=500"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) record(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := accountID(w, r)
		if !ok {
			return
		}

		var req recordRequest
		if !respond.Decode(w, r, &req) {
			return
		}

		date, _ := time.Parse(time.DateOnly, req.Date)

		var createdBy string
		if ident, ok := auth.FromContext(r.Context()); ok {
			createdBy = ident.Subject
		}

		m, err := h.movements.Record(r.Context(), id, movement.CreateParams{
			Kind:          kind,
			Amount:        req.Amount,
			Description:   req.Description,
			PaymentMethod: movement.PaymentMethod(req.PaymentMethod),
			Note:          req.Note,
			Date:          date,
			CreatedBy:     createdBy,
		})
		if err != nil {
			respond.Err(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, httpmovement.ToResponse(m))
	}
}

// importHistory records a spreadsheet of past movements. With dry_run=true
// the file is only parsed and summarised.
func (h *Handler) importHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if r.FormValue("dry_run") == "true" {
		rep, err := h.imports.Preview(importer.SourceSheet, file)
		if err != nil {
			respond.Err(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toImportResponse(rep, true))

		return
	}

	ident, _ := auth.FromContext(r.Context())

	rep, err := h.imports.Import(r.Context(), importer.SourceSheet, id, ident.Subject, file)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toImportResponse(rep, false))
}
