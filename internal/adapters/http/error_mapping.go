package httpadapter

import (
	"net/http"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrRFPNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrVendorNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
