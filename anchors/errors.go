// CLAUDE:SUMMARY Sentinel errors for the anchor store: not found, invalid JSON, schema violation.
package anchors

import "errors"

// ErrNotFound is returned by Load when the store file does not exist.
var ErrNotFound = errors.New("anchors: store file not found")

// ErrInvalidJSON is returned by Load when the store file is not valid JSON.
var ErrInvalidJSON = errors.New("anchors: store file is not valid JSON")

// ErrSchema is returned when store contents violate the anchor schema.
var ErrSchema = errors.New("anchors: store fails schema validation")
