package handler

import (
	"errors"
	"net/http"

	"store-service/internal/ledger"
)

// ledgerErrorStatus maps ledger errors onto HTTP status codes. Only a
// genuinely unknown error falls through to 500.
func ledgerErrorStatus(err error) int {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrOverpayment),
		errors.Is(err, ledger.ErrAlreadyReversed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
