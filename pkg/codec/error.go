package codec

import "net/http"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) {
	// Marshaling three strings cannot fail; a write failure means the client went away.
	_ = WriteJSON(w, status, resp)
}
