package fypapp

import "fmt"

// AuthKind narrows an AuthError to the user-visible failure cause.
type AuthKind int

const (
	AuthInvalidCredentials AuthKind = iota
	AuthAccountNotFound
	AuthAlreadyExists
	AuthWeakSecret
)

func (k AuthKind) String() string {
	switch k {
	case AuthAccountNotFound:
		return "account not found"
	case AuthAlreadyExists:
		return "account already exists"
	case AuthWeakSecret:
		return "secret too weak"
	default:
		return "invalid credentials"
	}
}

// NetworkError reports a connect or timeout failure. Retryable by the
// caller; the client itself never retries.
type NetworkError struct {
	Op  string
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e NetworkError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on NetworkError.
func (e NetworkError) Is(target error) bool {
	switch target.(type) {
	case NetworkError, *NetworkError:
		return true
	}
	return false
}

// AuthError reports a missing or rejected credential. Requires
// re-authentication rather than a retry.
type AuthError struct {
	Kind AuthKind
	Body string
}

func (e AuthError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("auth failure: %s", e.Kind)
	}
	return fmt.Sprintf("auth failure: %s: %s", e.Kind, e.Body)
}

// Is enables errors.Is matching on AuthError regardless of kind.
func (e AuthError) Is(target error) bool {
	switch target.(type) {
	case AuthError, *AuthError:
		return true
	}
	return false
}

// NotFoundError reports a missing record or resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	switch target.(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError reports a malformed request. Non-retryable.
type ValidationError struct {
	Name string
	Body string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Body)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	switch target.(type) {
	case ValidationError, *ValidationError:
		return true
	}
	return false
}

// RecordExistsError reports a create that collided with a record
// already stored at the same key. For deterministic keys either side
// may win the race to create first, so callers usually treat this as
// success.
type RecordExistsError struct {
	Body string
}

func (e RecordExistsError) Error() string {
	return fmt.Sprintf("record already exists: %s", e.Body)
}

// Is enables errors.Is matching on RecordExistsError.
func (e RecordExistsError) Is(target error) bool {
	switch target.(type) {
	case RecordExistsError, *RecordExistsError:
		return true
	}
	return false
}

// ServerError reports a 5xx or an unexpected response body. The
// status and body are propagated verbatim. Retryable with
// caller-supplied backoff.
type ServerError struct {
	Status int
	Body   string
}

func (e ServerError) Error() string {
	return fmt.Sprintf("server failure: status %d: %s", e.Status, e.Body)
}

// Is enables errors.Is matching on ServerError.
func (e ServerError) Is(target error) bool {
	switch target.(type) {
	case ServerError, *ServerError:
		return true
	}
	return false
}
