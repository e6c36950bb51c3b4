package importer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failed import so callers can tell a bad institution from a bad file.
type Kind string

const (
	IOError                Kind = "io_error"
	UnsupportedInstitution Kind = "unsupported_institution"
)

var (
	ErrIO                     = errors.New("statement could not be read")
	ErrUnsupportedInstitution = errors.New("unsupported institution")
)

// ImportError is the single error type returned by Registry.Import.
type ImportError struct {
	Kind        Kind
	Institution string
	Path        string
	Err         error
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case UnsupportedInstitution:
		return fmt.Sprintf("unsupported institution %q", e.Institution)
	default:
		target := e.Path
		if target == "" {
			target = "statement"
		}
		if e.Err == nil {
			return "reading " + target
		}
		return fmt.Sprintf("reading %s: %v", target, e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is matches ErrIO and ErrUnsupportedInstitution by kind.
func (e *ImportError) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == IOError
	case ErrUnsupportedInstitution:
		return e.Kind == UnsupportedInstitution
	}
	return false
}

// MarshalJSON exposes a stable code alongside the message for UI layers.
func (e *ImportError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code        Kind   `json:"code"`
		Message     string `json:"message"`
		Institution string `json:"institution,omitempty"`
		Path        string `json:"path,omitempty"`
	}{e.Kind, e.Error(), e.Institution, e.Path})
}

func ioError(err error) *ImportError {
	return &ImportError{Kind: IOError, Err: err}
}
