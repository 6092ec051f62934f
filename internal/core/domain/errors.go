package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthRequired means there is no valid token; callers redirect to login.
	ErrAuthRequired = errors.New("authentication required")
	// ErrPermissionDenied means the session lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTransport is the class of REST fallback failures.
	ErrTransport = errors.New("transport error")
	// ErrRealtime is the class of realtime channel failures. It is logged,
	// never shown.
	ErrRealtime = errors.New("realtime error")
	// ErrDecryption means a persisted entry could not be opened.
	ErrDecryption = errors.New("decryption failed")
	// ErrNotFound means a persisted entry is absent or expired.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidCredentials is returned by login when upstream rejects them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownView means a route names a view the catalog does not have.
	ErrUnknownView = errors.New("unknown view")
)

// TransportError describes a failed REST call. It matches ErrTransport with
// errors.Is and unwraps to the underlying cause, if any.
type TransportError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: transport error", e.Method, e.Path)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}
