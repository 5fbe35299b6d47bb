package movement

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/auth"
	"github.com/servimas/cortineros/internal/http/respond"
	"github.com/servimas/cortineros/internal/movement"
)

const defaultRecentLimit = 20

type Handler struct {
	svc *movement.Service
}

func NewHandler(svc *movement.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/recent", h.recent)
	r.Get("/{id}", h.get)
	r.With(auth.Require(auth.CapEditMovements)).Patch("/{id}", h.update)
	r.With(auth.Require(auth.CapVoidMovements)).Delete("/{id}", h.void)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 200 {
			respond.Error(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}

		limit = n
	}

	movs, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(movs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(m))
}

type updateMovementRequest struct {
	Amount        *int64  `json:"amount,omitempty"`
	Description   *string `json:"description,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty" validate:"omitempty,oneof=efectivo transferencia cheque mercadopago"`
	Note          *string `json:"note,omitempty"`
	Date          *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateMovementRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := movement.UpdateParams{
		Amount:      req.Amount,
		Description: req.Description,
		Note:        req.Note,
	}

	if req.PaymentMethod != nil {
		params.PaymentMethod = new(movement.PaymentMethod(*req.PaymentMethod))
	}

	if req.Date != nil {
		d, _ := time.Parse(time.DateOnly, *req.Date)
		params.Date = &d
	}

	m, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(m))
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Void(r.Context(), id); err != nil {
		respond.Err(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
