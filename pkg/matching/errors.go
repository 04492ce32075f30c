package matching

import "errors"

var (
	// ErrInvalidInput is returned when a test case cannot be built from the
	// supplied name parts, for example a person without a last name.
	ErrInvalidInput = errors.New("invalid test case input")

	// ErrWrongCategory is returned when a record of one kind is passed to a
	// constructor for the other kind.
	ErrWrongCategory = errors.New("record has the wrong category")

	// ErrVariantMismatch is returned when a person is evaluated against an
	// organization or the other way around.
	ErrVariantMismatch = errors.New("test case and candidate are different kinds")

	// ErrNotFound is returned by a RecordStore when an entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable wraps failures of the search, record or common name
	// collaborators.
	ErrUnavailable = errors.New("matching collaborator unavailable")

	// ErrUnknownSignal is returned when a result is built with a signal that
	// does not belong to its kind.
	ErrUnknownSignal = errors.New("signal does not apply to this kind")
)
