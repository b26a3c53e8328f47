package api

import (
	"net/http"

	"remit-pricing/internal/errors"
)

// StatusClientClosedRequest is returned when the caller went away before the
// resolution finished.
const StatusClientClosedRequest = 499

// StatusFor maps an error to an HTTP status. clientGone distinguishes a
// caller cancellation from an engine deadline.
func StatusFor(err error, clientGone bool) int {
	switch errors.TypeOf(err) {
	case errors.TypeInvalidAmount, errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeNoActiveContract, errors.TypeNoMatchingPricing, errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeTaxNotFound:
		return http.StatusUnprocessableEntity
	case errors.TypeAmbiguousContract, errors.TypeAmbiguousPricing:
		return http.StatusConflict
	case errors.TypeCancelled:
		if clientGone {
			return StatusClientClosedRequest
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorDetail(err error) ErrorDetail {
	var e *errors.Error
	if errors.As(err, &e) {
		return ErrorDetail{
			Code:    string(e.Type),
			Message: e.Message,
			Context: e.Context,
		}
	}
	return ErrorDetail{
		Code:    string(errors.TypeInternal),
		Message: "internal error",
	}
}
