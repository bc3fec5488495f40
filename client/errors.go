package client

import (
	"encoding/json"
	"errors"
	"fmt"

	v1 "dairyflow/pkg/api/v1"
)

// Kind classifies every failure the client can surface.
type Kind int

const (
	// KindNetwork: no response reached the client (connectivity, timeout, cancellation).
	KindNetwork Kind = iota + 1
	// KindAuthExpired: the server answered 401 and the session could not be recovered.
	KindAuthExpired
	// KindRefreshFailed: the refresh endpoint itself failed; the session was destroyed.
	KindRefreshFailed
	// KindServer: any other non-2xx response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthExpired:
		return "auth_expired"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against a normalized *Error.
var (
	ErrNetwork       = errors.New("network error")
	ErrAuthExpired   = errors.New("authentication expired")
	ErrRefreshFailed = errors.New("token refresh failed")
	ErrServer        = errors.New("server error")
)

const (
	networkErrorMessage = "Network error. Please check your connection."
	fallbackMessage     = "An error occurred"
)

// Error is the single shape every failed call is reshaped into.
type Error struct {
	Kind           Kind            `json:"-"`
	Message        string          `json:"message"`
	Status         int             `json:"status,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	IsNetworkError bool            `json:"isNetworkError,omitempty"`
	Err            error           `json:"-"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNetwork:
		return target == ErrNetwork
	case KindAuthExpired:
		return target == ErrAuthExpired
	case KindRefreshFailed:
		return target == ErrRefreshFailed
	case KindServer:
		return target == ErrServer
	}
	return false
}

// AsError extracts a normalized *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newNetworkError(kind Kind, err error) *Error {
	return &Error{
		Kind:           kind,
		Message:        networkErrorMessage,
		IsNetworkError: true,
		Err:            err,
	}
}

// newStatusError builds the error for a non-2xx response. 401 maps to
// KindAuthExpired, everything else to kind.
func newStatusError(kind Kind, resp *Response) *Error {
	if kind == KindServer && resp.StatusCode == 401 {
		kind = KindAuthExpired
	}
	return &Error{
		Kind:    kind,
		Message: messageFor(v1.ErrorMessage(resp.Body), fmt.Sprintf("Request failed with status code %d", resp.StatusCode)),
		Status:  resp.StatusCode,
		Data:    rawData(resp.Body),
	}
}

// messageFor applies the precedence server message, generic message, literal fallback.
func messageFor(serverMsg, generic string) string {
	if serverMsg != "" {
		return serverMsg
	}
	if generic != "" {
		return generic
	}
	return fallbackMessage
}

func rawData(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	b, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return b
}
