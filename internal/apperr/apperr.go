// Package apperr holds the error taxonomy shared by the counter workflow:
// validation failures keep the operator's input and re-enable editing,
// service failures ask the operator to try again, and missing resources
// are reported separately so best-effort paths can ignore them.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var ErrUnauthorized = errors.New("request not authorized")

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: service returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through a ServiceError.
func (e *ServiceError) Cause() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func IsService(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// AsValidation extracts the validation error, if any.
func AsValidation(err error) (ValidationError, bool) {
	var v ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

// HTTPStatus maps an error to the status the panels API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case IsService(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
