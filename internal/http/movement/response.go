package movement

import (
	"time"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/ledger"
)

type Response struct {
	ID            uuid.UUID   `json:"id"`
	AccountID     uuid.UUID   `json:"account_id"`
	Kind          ledger.Kind `json:"kind"`
	Amount        int64       `json:"amount"`
	Delta         int64       `json:"delta"`
	Description   string      `json:"description"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	Note          string      `json:"note,omitempty"`
	Date          string      `json:"date"`
	CreatedBy     string      `json:"created_by,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`
}

type EntryResponse struct {
	Response
	RunningBalance int64 `json:"running_balance"`
}

func ToResponse(m *ledger.Movement) Response {
	return Response{
		ID:            m.ID,
		AccountID:     m.AccountID,
		Kind:          m.Kind,
		Amount:        m.Amount,
		Delta:         m.Delta(),
		Description:   m.Description,
		PaymentMethod: m.PaymentMethod,
		Note:          m.Note,
		Date:          m.Date.Format(time.DateOnly),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToResponseList(movs []ledger.Movement) []Response {
	out := make([]Response, 0, len(movs))
	for i := range movs {
		out = append(out, ToResponse(&movs[i]))
	}

	return out
}

func ToEntryList(entries []ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, EntryResponse{
			Response:       ToResponse(&entries[i].Movement),
			RunningBalance: entries[i].RunningBalance,
		})
	}

	return out
}
