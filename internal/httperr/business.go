package httperr

import "errors"

// BusinessError is a domain-level failure identified by a stable code.
// Use cases return these; handlers translate them to HTTP responses.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// Codes shared across use cases.
const (
	CodeNotFound        = "not_found"
	CodeForbidden       = "forbidden"
	CodeInvalidState    = "invalid_state"
	CodeServiceInactive = "service_inactive"
	CodeInvalidStatus   = "invalid_status"
	CodePaymentFailed   = "payment_failed"
)
