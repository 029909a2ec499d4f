package taxonomy

import "errors"

var (
	// ErrMalformedCatalog is returned when a CWE catalog header does not name a known view, or an entry in the
	// catalog cannot be interpreted.
	ErrMalformedCatalog = errors.New("malformed CWE catalog")

	// ErrAmbiguousMatch is returned when a sibling list in a VRT side file holds more than one entry with the same ID.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrInvalidVRT is returned when the VRT document violates the structure of the taxonomy (e.g. a category
	// declaring a priority).
	ErrInvalidVRT = errors.New("invalid VRT document")
)
