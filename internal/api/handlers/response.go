package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/api/middleware"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// writeJSON encodes data before committing the status, so a value JSON cannot represent
// (an overflowed statistic, say) turns into an error response instead of an empty 200.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status, body = encodingFailure(r, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func encodingFailure(r *http.Request, err error) (int, []byte) {
	appErr := errors.NewInternalError("response could not be encoded").WithDetails(err.Error())

	var unsupported *json.UnsupportedValueError
	if stderrors.As(err, &unsupported) {
		appErr = errors.NewAppError(errors.ErrorTypeDomain, errors.CodeNonFiniteResult, "result is not finite").
			WithDetails("the inputs overflow double precision: " + unsupported.Str)
	}

	body, _ := json.Marshal(errors.ErrorResponse{
		Error:     appErr,
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
	return appErr.HTTPStatus, body
}

// writeError renders err as an ErrorResponse using the AppError's HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	appErr := errors.AsAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}

	// context values such as an infinite parameter would make the body unencodable
	if _, err := json.Marshal(appErr.Context); err != nil {
		clone := *appErr
		clone.Context = nil
		appErr = &clone
	}

	writeJSON(w, r, status, errors.ErrorResponse{
		Error:     appErr,
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}

// decode reads a JSON body into dst, rejecting unknown fields and oversize bodies.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return invalidRequest("request body too large")
		case stderrors.Is(err, io.EOF):
			return invalidRequest("request body is empty")
		default:
			return invalidRequest(err.Error())
		}
	}
	if dec.More() {
		return invalidRequest("request body must hold a single JSON object")
	}
	return nil
}

func invalidRequest(details string) *errors.AppError {
	return errors.NewAppError(errors.ErrorTypeValidation, errors.CodeInvalidRequest, "malformed request").
		WithDetails(details)
}

// withDefault substitutes def for an unset (zero) value.
func withDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func parseTail(s string) (models.TailType, error) {
	return models.ParseTailType(s)
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func requireField(name string, present bool) error {
	if !present {
		return invalidRequest(fmt.Sprintf("%s is required", name))
	}
	return nil
}
