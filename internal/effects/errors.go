package effects

import "errors"

var (
	// ErrMissingFile indicates the document does not exist on disk.
	ErrMissingFile = errors.New("effects: file missing")

	// ErrBadData indicates the document exists but fails schema
	// validation. Callers may fall back to an empty or default state.
	ErrBadData = errors.New("effects: malformed document")

	// ErrNewerFormat indicates the document's save_format exceeds what
	// this build understands. Loading is refused entirely.
	ErrNewerFormat = errors.New("effects: document requires a newer save format")
)
