package domain

import "fmt"

// ValidationError reports an indexer response that failed schema validation.
// It is always fatal to the enclosing call and never retried.
type ValidationError struct {
	// Source names the response that failed, e.g. "ledger" or "fixed-price-sale".
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a validation failure of the named response.
func NewValidationError(source string, err error) *ValidationError {
	return &ValidationError{Source: source, Err: err}
}

// MissingDataError reports an expected field or row that is absent from
// otherwise well-formed indexer data. Strict callers fail on it; best-effort
// callers skip the affected item.
type MissingDataError struct {
	// What names the missing piece, e.g. "token metadata".
	What string
	// Subject identifies the entity it was expected on, e.g. a contract address.
	Subject string
}

func (e *MissingDataError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("missing %s", e.What)
	}
	return fmt.Sprintf("missing %s for %s", e.What, e.Subject)
}

// NewMissingDataError reports the named piece as absent on subject.
func NewMissingDataError(what, subject string) *MissingDataError {
	return &MissingDataError{What: what, Subject: subject}
}
