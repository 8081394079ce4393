package domain

import "strings"

// FieldError is a single rule violation on one input field.
type FieldError struct {
	Field   string
	Kind    error
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e FieldError) Unwrap() error {
	return e.Kind
}

// ValidationError collects every field error of one request, in the order
// the rules were evaluated.
type ValidationError struct {
	Errors []FieldError
}

// Add appends a field error.
func (v *ValidationError) Add(field string, kind error, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Kind: kind, Message: message})
}

// Empty reports whether no error was collected.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Errors) == 0
}

// Err returns v as an error, or nil when nothing was collected.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Errors))
	for _, fe := range v.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes every field error so errors.Is(err, ErrWeakPassword) and
// friends match any collected kind.
func (v *ValidationError) Unwrap() []error {
	errs := make([]error, len(v.Errors))
	for i, fe := range v.Errors {
		errs[i] = fe
	}
	return errs
}

// Fields maps each field name to its ordered list of messages.
func (v *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(v.Errors))
	for _, fe := range v.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Has reports whether field has an error of the given kind.
func (v *ValidationError) Has(field string, kind error) bool {
	for _, fe := range v.Errors {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}
