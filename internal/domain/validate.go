package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Reason classifies why a payload was rejected.
type Reason string

const (
	MissingField Reason = "missing_field"
	UnknownField Reason = "unknown_field"
	EmptyPayload Reason = "empty_payload"
	InvalidType  Reason = "invalid_type"
	InvalidRange Reason = "invalid_range"
	InvalidDate  Reason = "invalid_date"
)

// ValidationError is a client error describing a specific bad field
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AsValidation unwraps err into a ValidationError if it is one
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func reject(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// requiredFields is also the check order, so a payload missing several
// fields always reports the same one.
var requiredFields = []string{"date", "exercise", "weight", "reps", "sets"}

var mutableFields = map[string]bool{
	"exercise": true,
	"weight":   true,
	"reps":     true,
	"sets":     true,
}

// ParseCreate validates a raw create payload and normalizes it into an
// EntryInput. Checks run in a fixed order: required fields, then date,
// then numeric type and range, so multiply-invalid payloads yield a
// deterministic error. Weight 0 is valid (bodyweight exercises).
func ParseCreate(raw map[string]any) (EntryInput, error) {
	var in EntryInput

	for _, f := range requiredFields {
		v, ok := raw[f]
		if !ok || v == nil {
			return in, reject(MissingField, "missing required field: %s", f)
		}
		if s, isStr := v.(string); isStr && s == "" {
			return in, reject(MissingField, "missing required field: %s", f)
		}
	}

	date, ok := raw["date"].(string)
	if !ok {
		return in, reject(InvalidDate, "date must be a string in YYYY-MM-DD format")
	}
	if err := checkDate(date); err != nil {
		return in, err
	}
	in.Date = date

	exercise, ok := raw["exercise"].(string)
	if !ok {
		return in, reject(InvalidType, "exercise must be a string")
	}
	in.Exercise = exercise

	weight, err := numField(raw, "weight")
	if err != nil {
		return in, err
	}
	if weight < 0 {
		return in, reject(InvalidRange, "weight must be zero or greater")
	}
	in.Weight = weight

	reps, err := intField(raw, "reps")
	if err != nil {
		return in, err
	}
	if reps <= 0 {
		return in, reject(InvalidRange, "reps must be greater than zero")
	}
	in.Reps = reps

	sets, err := intField(raw, "sets")
	if err != nil {
		return in, err
	}
	if sets <= 0 {
		return in, reject(InvalidRange, "sets must be greater than zero")
	}
	in.Sets = sets

	return in, nil
}

// ParseUpdate validates a raw partial-update payload. Present fields
// are checked before unknown keys are looked for, so an invalid value
// wins over a stray key. Date is not updatable; a "date" key is
// reported as an unknown field.
func ParseUpdate(raw map[string]any) (EntryPatch, error) {
	var p EntryPatch

	if len(raw) == 0 {
		return p, reject(EmptyPayload, "no update data provided")
	}

	if v, ok := raw["exercise"]; ok {
		s, isStr := v.(string)
		if !isStr || s == "" {
			return p, reject(InvalidType, "exercise must be a non-empty string")
		}
		p.Exercise = &s
	}

	if _, ok := raw["weight"]; ok {
		weight, err := numField(raw, "weight")
		if err != nil {
			return p, err
		}
		if weight < 0 {
			return p, reject(InvalidRange, "weight must be zero or greater")
		}
		p.Weight = &weight
	}

	if _, ok := raw["reps"]; ok {
		reps, err := intField(raw, "reps")
		if err != nil {
			return p, err
		}
		if reps <= 0 {
			return p, reject(InvalidRange, "reps must be greater than zero")
		}
		p.Reps = &reps
	}

	if _, ok := raw["sets"]; ok {
		sets, err := intField(raw, "sets")
		if err != nil {
			return p, err
		}
		if sets <= 0 {
			return p, reject(InvalidRange, "sets must be greater than zero")
		}
		p.Sets = &sets
	}

	var unknown []string
	for key := range raw {
		if !mutableFields[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return p, reject(UnknownField, "invalid field: %s", unknown[0])
	}

	return p, nil
}

// checkDate requires a parseable YYYY-MM-DD date no later than the
// current calendar day. The comparison is day-precise, so today is
// always valid regardless of clock time.
func checkDate(s string) error {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return reject(InvalidDate, "invalid date value: %q", s)
	}

	y, m, day := time.Now().Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return reject(InvalidDate, "date cannot be in the future: %s", s)
	}
	return nil
}

func numField(raw map[string]any, name string) (float64, error) {
	f, ok := raw[name].(float64)
	if !ok {
		return 0, reject(InvalidType, "%s must be a number", name)
	}
	return f, nil
}

// intField rejects fractional values instead of truncating them.
func intField(raw map[string]any, name string) (int, error) {
	f, ok := raw[name].(float64)
	if !ok {
		return 0, reject(InvalidType, "%s must be a number", name)
	}
	if f != math.Trunc(f) {
		return 0, reject(InvalidType, "%s must be an integer", name)
	}
	return int(f), nil
}
