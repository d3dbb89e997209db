// Package utils carries the small cross-cutting helpers: the response
// envelope, JWT issuance and validation-error formatting.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

// ErrorSource points at the request field that caused a failure.
type ErrorSource struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Response is the envelope every endpoint writes, success or failure.
type Response struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Data         interface{}   `json:"data,omitempty"`
	Meta         *models.Meta  `json:"meta,omitempty"`
	ErrorSources []ErrorSource `json:"errorSources,omitempty"`
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// WriteSuccessWithMeta writes a success envelope with a pagination block.
func WriteSuccessWithMeta(w http.ResponseWriter, status int, message string, data interface{}, meta models.Meta) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data, Meta: &meta})
}

// WriteError writes a failure envelope, optionally with field-level sources.
func WriteError(w http.ResponseWriter, status int, message string, sources ...ErrorSource) {
	writeJSON(w, status, Response{Success: false, Message: message, ErrorSources: sources})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
