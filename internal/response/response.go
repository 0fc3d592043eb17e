// Package response defines the uniform JSON envelope every endpoint
// returns: {success, data?, error?: {code, message, details?}}.
package response

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

func Err(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

func ErrDetails(w http.ResponseWriter, status int, code, message string, details any) {
	write(w, status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

func write(w http.ResponseWriter, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}
