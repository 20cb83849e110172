package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredential is returned when no API key is stored.
	ErrMissingCredential = errors.New("no OpenAI API key configured")
	// ErrInvalidCredential is returned when the server rejects the key (401).
	ErrInvalidCredential = errors.New("invalid API key")
	// ErrInsufficientPermission is returned when the key lacks billing scope (403).
	ErrInsufficientPermission = errors.New("insufficient permissions")
	// ErrUpstream is returned for any other non-success status.
	ErrUpstream = errors.New("billing API error")
	// ErrMalformedResponse is returned when a success body is not valid JSON.
	ErrMalformedResponse = errors.New("malformed billing response")
)

// PermissionHint explains the usual cause of a 403 from the costs endpoint.
const PermissionHint = "You are likely using a Project Key. The organization/costs endpoint requires " +
	"an admin-scoped key (a User API Key (Legacy) with Admin permissions, or an Admin API key) " +
	"to view billing data."

// maxBodyInError bounds how much of a server body is echoed into messages.
const maxBodyInError = 512

// StatusError describes a failed costs request. Kind is one of the
// package's sentinel errors and is matched by errors.Is.
type StatusError struct {
	Kind       error
	Err        error
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	body := truncate(strings.TrimSpace(e.Body), maxBodyInError)

	switch e.Kind {
	case ErrInvalidCredential:
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, body)
	case ErrInsufficientPermission:
		return fmt.Sprintf("%v (status %d): %s. %s", e.Kind, e.StatusCode, body, PermissionHint)
	case ErrMalformedResponse:
		if e.Err != nil {
			return fmt.Sprintf("%v: %v", e.Kind, e.Err)
		}
		return e.Kind.Error()
	default:
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, body)
	}
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *StatusError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsCredentialError reports whether err means the stored key must change
// before a refresh can succeed.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrInsufficientPermission)
}

func classify(status int, body []byte) *StatusError {
	e := &StatusError{StatusCode: status, Body: string(body)}
	switch status {
	case http.StatusUnauthorized:
		e.Kind = ErrInvalidCredential
	case http.StatusForbidden:
		e.Kind = ErrInsufficientPermission
	default:
		e.Kind = ErrUpstream
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
