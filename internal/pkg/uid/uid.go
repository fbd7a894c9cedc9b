// Package uid provides small identifier generators behind two interfaces:
// StringID for textual IDs and NumberID for int64 IDs.
package uid

// StringID generates string identifiers.
type StringID interface {
	// Generate returns a new string identifier.
	Generate() string
}

// NumberID generates int64 identifiers.
type NumberID interface {
	// Generate returns a new int64 identifier.
	Generate() int64
}
