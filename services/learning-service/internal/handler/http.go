package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/shared/apperror"
	"github.com/vasapolrittideah/elearning-api/shared/response"
	"github.com/vasapolrittideah/elearning-api/shared/validation"
)

const maxBodyBytes = 10 << 20

var errEmptyBody = apperror.New(apperror.BadRequest, "Request body must not be empty")

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(r *http.Request, v *validation.Validator, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return apperror.Wrap(apperror.BadRequest, "Invalid request body", err)
	}

	if err := v.Struct(dst); err != nil {
		return apperror.New(apperror.BadRequest, err.Error())
	}

	return nil
}

// fail logs err and writes it as a failure response. Only failures the
// caller cannot fix are logged at error level.
func fail(logger *zerolog.Logger, w http.ResponseWriter, err error, msg string) {
	switch apperror.KindOf(err) {
	case apperror.Internal, apperror.UpstreamFailure:
		logger.Error().Err(err).Msg(msg)
	default:
		logger.Debug().Err(err).Msg(msg)
	}

	response.FromError(w, err)
}
