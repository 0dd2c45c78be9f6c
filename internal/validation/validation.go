package validation

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// dateTimeLayouts are the accepted input formats
// for date-time fields, tried in order.
var dateTimeLayouts = []string{
	time.DateTime,
	time.RFC3339,
	time.DateOnly,
}

type Mode int

const (
	// Strict checks every rule; required fields
	// must be present. Used on create.
	Strict Mode = iota

	// Partial checks only the fields present in the
	// request; absent fields are skipped entirely.
	// Used on update.
	Partial
)

// Rule declares the constraints for a single field.
// The zero value accepts anything.
type Rule struct {
	Field    string
	Required bool
	Nullable bool
	MaxLen   int
	Enum     []string
	DateTime bool
	Email    bool
}

// Field is one supplied value. Null marks an explicit JSON null,
// which is distinct from the field being absent entirely.
type Field struct {
	Null  bool
	Value string
}

// Fields holds the values supplied by the request,
// keyed by field name. Absent fields have no entry.
type Fields map[string]Field

type Errors map[string][]string

func (e Errors) Any() bool {
	return len(e) != 0
}

func (e Errors) add(field, message string) {
	e[field] = append(e[field], message)
}

// Check evaluates every rule against the supplied fields
// and collects field-keyed error messages. One rule table
// serves both the create and the update path; the mode
// decides how absent fields are treated. An explicit null
// passes only rules marked nullable.
func Check(rules []Rule, fields Fields, mode Mode) Errors {
	errs := make(Errors)
	for _, rule := range rules {
		field, present := fields[rule.Field]
		if !present {
			if mode == Strict && rule.Required {
				errs.add(rule.Field, fmt.Sprintf("The %s field is required.", rule.Field))
			}
			continue
		}

		if field.Null {
			if rule.Nullable {
				continue
			}
			if rule.Required {
				errs.add(rule.Field, fmt.Sprintf("The %s field is required.", rule.Field))
			} else {
				errs.add(rule.Field, fmt.Sprintf("The %s field must not be null.", rule.Field))
			}
			continue
		}

		value := field.Value
		if rule.Required && value == "" {
			errs.add(rule.Field, fmt.Sprintf("The %s field is required.", rule.Field))
			continue
		}
		if rule.MaxLen > 0 && utf8.RuneCountInString(value) > rule.MaxLen {
			errs.add(rule.Field, fmt.Sprintf("The %s field must not be greater than %d characters.", rule.Field, rule.MaxLen))
		}
		if len(rule.Enum) > 0 && !contains(rule.Enum, value) {
			errs.add(rule.Field, fmt.Sprintf("The selected %s is invalid.", rule.Field))
		}
		if rule.DateTime {
			if _, err := ParseDateTime(value); err != nil {
				errs.add(rule.Field, fmt.Sprintf("The %s field must be a valid date.", rule.Field))
			}
		}
		if rule.Email && !emailRegexp.MatchString(value) {
			errs.add(rule.Field, fmt.Sprintf("The %s field must be a valid email address.", rule.Field))
		}
	}
	return errs
}

// ParseDateTime parses a date-time field value,
// accepting the same layouts Check validates against.
func ParseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
