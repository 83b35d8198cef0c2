package httpapi

import (
	"encoding/json"
	"net/http"
)

// response is the envelope every endpoint answers with, mirroring the shape
// clients of this API already parse.
type response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details string      `json:"details,omitempty"`
	Data    interface{} `json:"data,omitempty"`

	Count      int `json:"count,omitempty"`
	Total      int `json:"total,omitempty"`
	Page       int `json:"page,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, response{
		Success: false,
		Code:    code,
		Message: message,
		Details: details,
	})
}
