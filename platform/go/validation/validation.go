// Package validation sanitizes and validates free-text form input.
//
// Rules are pure functions over a typed form. Apply runs every rule in order and
// aggregates the violations, so a form with several bad fields reports all of them at once.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// checker evaluates single-value tags such as "min=3"; string lengths are counted in runes.
var checker = validator.New()

// FieldError describes one rule violation on one form field.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

// Errors is an ordered list of field errors. A nil or empty list means the input is valid.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation error"
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Field+": "+fe.Message)
	}
	return "validation error: " + strings.Join(messages, "; ")
}

// For returns the messages reported against field, in rule order.
func (e Errors) For(field string) []string {
	var messages []string
	for _, fe := range e {
		if fe.Field == field {
			messages = append(messages, fe.Message)
		}
	}
	return messages
}

// Rule inspects a form and reports zero or more violations.
type Rule[T any] func(form T) Errors

// Apply evaluates every rule against form and concatenates their errors.
func Apply[T any](form T, rules ...Rule[T]) Errors {
	var errs Errors
	for _, rule := range rules {
		errs = append(errs, rule(form)...)
	}
	return errs
}

// MinLength reports message on field when the value returned by get has fewer than n characters.
func MinLength[T any](field string, n int, message string, get func(T) string) Rule[T] {
	return Tag(field, fmt.Sprintf("min=%d", n), message, get)
}

// MaxLength reports message on field when the value returned by get has more than n characters.
func MaxLength[T any](field string, n int, message string, get func(T) string) Rule[T] {
	return Tag(field, fmt.Sprintf("max=%d", n), message, get)
}

// Tag builds a rule from a validator tag expression evaluated against the value returned by get.
// A malformed tag panics when the rule first runs.
func Tag[T any](field, tag, message string, get func(T) string) Rule[T] {
	return func(form T) Errors {
		value := get(form)
		if err := checker.Var(value, tag); err != nil {
			return Errors{{Field: field, Message: message, Value: value}}
		}
		return nil
	}
}

// Trim removes leading and trailing whitespace.
func Trim(value string) string {
	return strings.TrimSpace(value)
}

// StripControl drops control characters such as NUL, which document stores reject.
func StripControl(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces markup-significant characters with HTML entities.
func Escape(value string) string {
	return escaper.Replace(value)
}
