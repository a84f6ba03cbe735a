package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
)

// errorResponse is the wire shape of every failure: a stable machine-readable
// code plus a human-readable message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON marshals data and writes it with the given status. Marshalling
// happens before the status line so an encoding failure can still produce a
// well-formed 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"An unexpected error occurred"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes a standard error response.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body into v. The request must declare an
// application/json media type and the body must be exactly one JSON document
// with no unknown fields.
func ParseJSON(r *http.Request, v any) error {
	if !hasJSONContentType(r) {
		return errors.New("Content-Type must be application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("request body must be valid JSON")
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}

// hasJSONContentType reports whether the request declares application/json,
// tolerating parameters such as a charset.
func hasJSONContentType(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
