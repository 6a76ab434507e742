package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vasapolrittideah/elearning-api/shared/apperror"
)

const internalErrorMessage = "something went wrong"

// ErrorBody is the JSON body written for every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a failure body with the given status code and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Success: false, Message: message})
}

// FromError writes err using its apperror kind and message. Errors that are not
// an *apperror.Error are reported as a generic internal error.
func FromError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.Internal {
		Error(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	Error(w, appErr.Kind.HTTPStatus(), appErr.Message)
}
