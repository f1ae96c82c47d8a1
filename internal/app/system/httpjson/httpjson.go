// Package httpjson holds the small helpers the JSON API handlers share
// for decoding request bodies and writing responses.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes caps JSON request bodies; rosters and questionnaires
// are small documents.
const maxBodyBytes = 1 << 20

// errorBody is the uniform error envelope.
type errorBody struct {
	Message string `json:"message"`
}

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"message": …} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, errorBody{Message: message})
}

// Decode reads the request body into v, rejecting unknown fields and
// oversized bodies.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	// A body must be a single JSON value.
	if dec.More() {
		return errors.New("request body contains more than one JSON value")
	}
	return nil
}
