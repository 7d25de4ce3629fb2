package domain

import "fmt"

// NotFoundError is returned when a document id has no matching record.
// The HTTP layer maps it to 404.
type NotFoundError struct {
	DocType string
	ID      string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.DocType, e.ID)
}

// ValidationError covers missing or malformed request fields. Mapped to 400.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// MissingFieldError is a domain error: a derived field the operation depends
// on has not been computed yet (e.g. absolute humidity before the first
// ingested measurement).
type MissingFieldError struct {
	DocType string
	Field   string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("%s does not have %s data", e.DocType, e.Field)
}
