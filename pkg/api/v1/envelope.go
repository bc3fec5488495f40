package v1

import (
	"bytes"
	"encoding/json"
)

// Envelope is the uniform wrapper the backend puts around every response.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message,omitempty"`
}

// Unwrap returns the envelope's data when the body carries a non-null
// "data" member, and the raw body otherwise.
func Unwrap(body []byte) json.RawMessage {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return body
	}
	data, ok := probe["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return body
	}
	return data
}

// ErrorMessage extracts the "message" member of an error body, if any.
func ErrorMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.Message
}
