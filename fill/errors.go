// CLAUDE:SUMMARY Sentinel errors shared across the fill service surfaces.
package fill

import "errors"

var (
	// ErrTemplateNotFound is returned when a named template is absent
	// from the store.
	ErrTemplateNotFound = errors.New("fill: template not found")

	// ErrDataTooLarge is returned when render data exceeds the
	// configured size cap.
	ErrDataTooLarge = errors.New("fill: data too large")

	// ErrNoElement is returned when template markup contains no element
	// node to render into.
	ErrNoElement = errors.New("fill: template has no element")

	// ErrBadData is returned when render data is not valid micro-data
	// JSON.
	ErrBadData = errors.New("fill: bad data")
)
