package respond

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/billing"
	"github.com/servimas/cortineros/internal/importer"
	"github.com/servimas/cortineros/internal/importer/sheet"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

// Err maps a service error to its status code. Unknown errors are logged and
// reported as 500 without their message.
func Err(w http.ResponseWriter, err error) {
	var (
		invalid *ledger.InvalidMovementError
		rowErr  *sheet.RowError
	)

	switch {
	case errors.Is(err, account.ErrNotFound), errors.Is(err, movement.ErrAccountNotFound):
		Error(w, http.StatusNotFound, "account not found")
	case errors.Is(err, movement.ErrNotFound):
		Error(w, http.StatusNotFound, "movement not found")
	case errors.As(err, &invalid):
		ErrorDetails(w, http.StatusUnprocessableEntity, "invalid movement in history",
			map[string]any{"movement_id": invalid.ID, "reason": invalid.Reason})
	case errors.As(err, &rowErr):
		ErrorDetails(w, http.StatusBadRequest, rowErr.Err.Error(), map[string]any{"row": rowErr.Row})
	case errors.Is(err, movement.ErrVoided):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, account.ErrInvalidName),
		errors.Is(err, account.ErrInvalidZone),
		errors.Is(err, account.ErrInvalidCreditLimit),
		errors.Is(err, movement.ErrInvalidAmount),
		errors.Is(err, movement.ErrMissingDate),
		errors.Is(err, movement.ErrUnknownPaymentMethod),
		errors.Is(err, billing.ErrNegativeTotal),
		errors.Is(err, importer.ErrEmptyImport),
		errors.Is(err, sheet.ErrNoProfile):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
