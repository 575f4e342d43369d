package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind tags how a backend response was classified.
type Kind int

const (
	// KindOk is a 2xx response with a JSON object body and no error field.
	KindOk Kind = iota
	// KindStructuredError carries a backend supplied error message.
	KindStructuredError
	// KindOpaqueError carries only a status; the body was not usable.
	KindOpaqueError
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindStructuredError:
		return "structured_error"
	case KindOpaqueError:
		return "opaque_error"
	default:
		return "unknown"
	}
}

// Result is a backend response decoded once at the proxy boundary.
type Result struct {
	Kind    Kind
	Status  int
	Body    json.RawMessage
	Message string
}

// OK reports whether the result carries a usable payload.
func (r Result) OK() bool { return r.Kind == KindOk }

// Decode classifies a raw backend response. Raw bodies of failed calls are
// never copied into the result.
func Decode(status int, body []byte) Result {
	var fields map[string]json.RawMessage
	parseErr := json.Unmarshal(body, &fields)
	isObject := parseErr == nil && fields != nil
	message, hasError := errorField(fields)

	if status >= 200 && status < 300 {
		switch {
		case isObject && hasError:
			return Result{Kind: KindStructuredError, Status: http.StatusBadGateway, Message: message}
		case isObject:
			return Result{Kind: KindOk, Status: status, Body: json.RawMessage(body)}
		default:
			return Result{
				Kind:    KindOpaqueError,
				Status:  http.StatusBadGateway,
				Message: fmt.Sprintf("Unexpected response format from processing backend. Status: %d", status),
			}
		}
	}

	switch {
	case hasError:
		return Result{Kind: KindStructuredError, Status: status, Message: message}
	case json.Valid(body):
		return Result{
			Kind:    KindOpaqueError,
			Status:  status,
			Message: fmt.Sprintf("Unexpected response format from processing backend. Status: %d", status),
		}
	case looksLikeHTML(body):
		return Result{
			Kind:    KindOpaqueError,
			Status:  status,
			Message: fmt.Sprintf("Processing backend error (status: %d). Received an HTML error page.", status),
		}
	default:
		return Result{
			Kind:    KindOpaqueError,
			Status:  status,
			Message: fmt.Sprintf("Processing backend error (status: %d). Could not parse response.", status),
		}
	}
}

func errorField(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["error"]
	if !ok {
		return "", false
	}
	var message string
	if err := json.Unmarshal(raw, &message); err != nil || message == "" {
		return "", false
	}
	return message, true
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(trimmed, []byte("<!doctype html")) || bytes.HasPrefix(trimmed, []byte("<html"))
}
