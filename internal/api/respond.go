// internal/api/respond.go
//
// JSON response envelope shared by every handler.
//
// Context
// -------
// Success bodies are `{"data": …}`; failures are
// `{"error": {"code": …, "message": …}}`.  Handlers never write raw
// storage-layer error strings to the client; the message is always the
// taxonomy's human-readable text.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any      `json:"data,omitempty"`
	Error *errBody `json:"error,omitempty"`
}

// Success writes a 2xx envelope.  A nil payload still produces a JSON
// body (`{"data": null}` is avoided; the envelope omits the field), so
// callers that need an explicit "none" should pass an empty struct or
// map instead of nil.
func Success(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Data: data})
}

// Fail writes an error envelope with a machine code and a human message.
func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Error: &errBody{Code: code, Message: message}})
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}
