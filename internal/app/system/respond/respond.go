// Package respond writes the JSON envelope used by every API handler.
//
// Success bodies are {"success":true,"message":...,"data":...}; error
// bodies drop the data field. Error statuses come from the apperr taxonomy;
// internal causes are logged and never serialized.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success envelope with the given status, payload, and
// message.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(envelope{Success: true, Message: message, Data: data})
}

// Error translates err into its HTTP status and writes an error envelope.
// Wrapped internal causes are logged at error level; everything else at
// debug, since domain failures are expected traffic.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err), zap.NamedError("cause", ae.Err))
	} else {
		log.Debug("request rejected", zap.Int("status", ae.Status), zap.String("reason", ae.Message))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(ae.Status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(envelope{Success: false, Message: ae.Message})
}

// DecodeBody parses a JSON request body into dst, failing with a typed
// BadRequest on malformed input. Unknown fields are rejected so schema
// errors surface at the boundary instead of deep in aggregate logic.
func DecodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("Malformed request body")
	}
	return nil
}
