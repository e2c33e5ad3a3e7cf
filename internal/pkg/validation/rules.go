package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Account rule limits, shared by registration and the admin seed.
var (
	PasswordMinLength = 6
	UsernameMaxLength = 50
	NameMaxLength     = 50
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
}

// StringValidation checks one named string value. Lengths are counted in
// characters, not bytes.
type StringValidation struct {
	Field    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a required string validation for field
func NewStringValidation(field, value string) *StringValidation {
	return &StringValidation{
		Field:    field,
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate reports whether the value passes every rule
func (v *StringValidation) Validate() bool {
	return v.Err() == nil
}

// Err returns the first rule the value breaks, or nil
func (v *StringValidation) Err() error {
	if v.Value == "" {
		if v.Required {
			return fmt.Errorf("%s is required", v.Field)
		}
		return nil
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return fmt.Errorf("%s must be at least %d characters", v.Field, v.MinLen)
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return fmt.Errorf("%s must be at most %d characters", v.Field, v.MaxLen)
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return fmt.Errorf("%s has an invalid format", v.Field)
	}
	return nil
}

// NumericValidation checks one named int value against a range
type NumericValidation struct {
	Field string
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(field string, value int) *NumericValidation {
	return &NumericValidation{Field: field, Value: value}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// Validate reports whether the value is in range
func (v *NumericValidation) Validate() bool {
	return v.Err() == nil
}

// Err returns an error describing the range violation, or nil
func (v *NumericValidation) Err() error {
	if v.Min != 0 && v.Value < v.Min {
		return fmt.Errorf("%s must be at least %d", v.Field, v.Min)
	}
	if v.Max != 0 && v.Value > v.Max {
		return fmt.Errorf("%s must be at most %d", v.Field, v.Max)
	}
	return nil
}
