package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/pkg/log"
)

// Client-facing messages that are not owned by the domain.
const (
	MsgBodyNotObject = "Request body must be a JSON object."
	MsgStorageRedact = "database error"
	MsgInternal      = "internal server error"
)

// errBodyNotObject is returned by request decoding when the body is not a
// JSON object at all.
var errBodyNotObject = errors.New(MsgBodyNotObject)

// jsonError is the error payload of every non-2xx response.
type jsonError struct {
	Error string `json:"error"`
}

// WriteJSONError writes {"error": message} with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message})
}

// writeJSON encodes v before touching the response so that an encoding
// failure can still be reported as a clean 500.
func writeJSON(w http.ResponseWriter, logger log.Logger, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("encode response", log.Err(err))
		WriteJSONError(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError maps err to a status code and JSON body.
func writeError(w http.ResponseWriter, logger log.Logger, redact bool, err error) {
	var (
		verr *domain.ValidationError
		serr *domain.StorageError
	)
	switch {
	case errors.Is(err, errBodyNotObject):
		WriteJSONError(w, http.StatusBadRequest, MsgBodyNotObject)
	case errors.As(err, &verr):
		logger.Debug("search rejected", log.String("field", verr.Field))
		WriteJSONError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &serr):
		logger.Error("search failed",
			log.String("op", string(serr.Op)),
			log.Err(serr.Err))
		msg := serr.Error()
		if redact {
			msg = MsgStorageRedact
		}
		WriteJSONError(w, http.StatusInternalServerError, msg)
	default:
		logger.Error("unexpected search error", log.Err(err))
		WriteJSONError(w, http.StatusInternalServerError, MsgInternal)
	}
}
