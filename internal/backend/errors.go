package backend

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

// ErrUnavailable marks transport failures talking to the backend.
var ErrUnavailable = errors.New("backend unavailable")

// DefaultMessage is shown when the backend gave no usable message.
const DefaultMessage = "Something went wrong. Please try again."

// APIError is a failed backend call. Message carries the backend's own text when present.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("backend: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("backend: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
	default:
		return "backend: " + e.Message
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets handlers map every backend failure to a bad-gateway response.
func (e *APIError) Is(target error) bool { return target == httpx.ErrUpstream }

// UserMessage is the text safe to show on a page.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMessage
}

// UserMessage extracts a displayable message from any error returned by the client.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return DefaultMessage
}
