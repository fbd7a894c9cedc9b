package validator

// Validator checks a struct against its declared validation rules.
type Validator interface {
	// Validate returns nil when data passes all rules, otherwise an error
	// describing the failing fields.
	Validate(data any) error
}
