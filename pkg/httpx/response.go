package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body. Message is always set; Result
// carries the payload on success and Errors carries per-field validation
// failures.
type Envelope struct {
	Message string            `json:"message"`
	Result  any               `json:"result,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes an envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Message: message})
}

// WriteResult writes a success envelope with a message and a payload.
func WriteResult(w http.ResponseWriter, code int, message string, result any) {
	WriteJSON(w, code, Envelope{Message: message, Result: result})
}

// WriteFieldErrors writes a validation-failure envelope with one message per
// offending field.
func WriteFieldErrors(w http.ResponseWriter, code int, message string, fields map[string]string) {
	WriteJSON(w, code, Envelope{Message: message, Errors: fields})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
