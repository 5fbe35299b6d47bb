package billing

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/servimas/cortineros/internal/billing"
	"github.com/servimas/cortineros/internal/http/respond"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/split", h.split)
}

func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	total, err := strconv.ParseInt(r.URL.Query().Get("total"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "total must be a whole number of pesos")
		return
	}

	b, err := billing.Split(total)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, b)
}
