// Package handlers implements the HTTP endpoints of the analysis API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/common"
)

// DefaultMaxBodySize bounds request bodies when no limit is configured.
const DefaultMaxBodySize int64 = 4 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeSuccess wraps data in the success envelope.
func writeSuccess[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, statusCode, resp)
}

// writeAppError maps err to its HTTP status and writes the error envelope.
// Errors without an application code are masked as internal errors.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		logger.Error("unhandled error", logging.Err(err))
		code = errors.ErrCodeInternal
		err = errors.Internal(errors.DefaultMessageForCode(code))
	}

	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String(logging.KeyErrorCode, code.String()),
			logging.Err(err))
	}

	var detail string
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		detail = ae.Detail
	}
	resp := common.NewErrorResponse(code.String(), errors.GetMessage(err), detail)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, status, resp)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields,
// trailing data and bodies over maxBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.InvalidParam("request body too large").WithDetailf("limit=%d", maxBytes)
		case stderrors.Is(err, io.EOF):
			return errors.InvalidParam("request body is empty")
		default:
			return errors.Wrap(err, errors.CodeInvalidParam, "malformed JSON body")
		}
	}
	if dec.More() {
		return errors.InvalidParam("request body must contain a single JSON object")
	}
	return nil
}
