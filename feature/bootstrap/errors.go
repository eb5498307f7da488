package bootstrap

import "errors"

var (
	// ErrInstanceNotFound is returned when the identifier matches no accessible instance.
	ErrInstanceNotFound = errors.New("instance not found or not accessible")
	// ErrMissingCredentials is returned when no access token was set in time.
	ErrMissingCredentials = errors.New("access token not set")
	// ErrMissingIdentifier is returned when no instance identifier was set in time.
	ErrMissingIdentifier = errors.New("instance identifier not set")
	// ErrNoLanguages is returned when the instance ends up without languages.
	ErrNoLanguages = errors.New("cannot get languages for the instance")
	// ErrNoDefaultLanguage is returned when no default language can be determined.
	ErrNoDefaultLanguage = errors.New("cannot determine default language for the instance")
	// ErrParentUnavailable marks items skipped because their parent could not be resolved.
	ErrParentUnavailable = errors.New("parent item unavailable")
	// ErrUnknownShape marks items whose shape does not exist on the instance.
	ErrUnknownShape = errors.New("unknown shape")
)

// fatalError marks area failures that abort the run.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err aborts a run.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}
