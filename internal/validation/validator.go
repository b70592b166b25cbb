package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/geoprofiles/backend/internal/models"
)

// MinFieldLength is the minimum number of characters of every submitted field.
const MinFieldLength = 3

// Mode selects which rules apply to a submission.
type Mode int

const (
	// Create requires every mandatory field.
	Create Mode = iota
	// Update allows partial submissions but rejects fields outside the schema.
	Update
)

// Kind enumerates the violations a submission can have.
type Kind string

const (
	KindMissing      Kind = "missing"
	KindTooShort     Kind = "too_short"
	KindNotANumber   Kind = "not_a_number"
	KindOutOfRange   Kind = "out_of_range"
	KindInvalidDate  Kind = "invalid_date"
	KindUnknownField Kind = "unknown_field"
	KindNotAString   Kind = "not_a_string"
)

// Violation is one failed rule.
type Violation struct {
	Field   string
	Kind    Kind
	Message string
}

// Error lists every violation found in a submission.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the human-readable violation messages in report order.
func (e *Error) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Has reports whether a violation of kind exists for field.
func (e *Error) Has(field string, kind Kind) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}

// Validator checks profile submissions. Now is injectable for tests.
type Validator struct {
	Now func() time.Time
}

// New returns a Validator using the wall clock.
func New() *Validator {
	return &Validator{Now: time.Now}
}

// Validate evaluates every rule for mode and returns the typed patch, or an
// *Error carrying all violations. The password is not part of the patch; it
// is either hashed on create or used to authorize an update.
func (v *Validator) Validate(sub *models.ProfileSubmission, mode Mode) (*models.ProfilePatch, error) {
	var violations []Violation
	add := func(field string, kind Kind, format string, args ...any) {
		violations = append(violations, Violation{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	if mode == Update {
		for _, key := range sub.Unknown {
			add(key, KindUnknownField, "unknown field: %s", key)
		}
	}
	for _, key := range sub.NonString {
		add(key, KindNotAString, "%s must be a string", key)
	}

	if mode == Create {
		for _, name := range models.MandatoryFields {
			if sub.Field(name) == nil && !contains(sub.NonString, name) {
				add(name, KindMissing, "missing field: %s", name)
			}
		}
	}

	for _, name := range models.MandatoryFields {
		value := sub.Field(name)
		if value != nil && utf8.RuneCountInString(*value) < MinFieldLength {
			add(name, KindTooShort, "%s must be at least %d characters long", name, MinFieldLength)
		}
	}

	patch := &models.ProfilePatch{
		Name:        sub.Name,
		Address:     sub.Address,
		Description: sub.Description,
	}

	if sub.LatStr != nil {
		lat, err := parseCoordinate(*sub.LatStr, 90)
		switch err {
		case nil:
			patch.Lat = &lat
		case errNotANumber:
			add(models.FieldLat, KindNotANumber, "%s must be a number", models.FieldLat)
		default:
			add(models.FieldLat, KindOutOfRange, "lat must be between -90 and 90")
		}
	}
	if sub.LongStr != nil {
		long, err := parseCoordinate(*sub.LongStr, 180)
		switch err {
		case nil:
			patch.Long = &long
		case errNotANumber:
			add(models.FieldLong, KindNotANumber, "%s must be a number", models.FieldLong)
		default:
			add(models.FieldLong, KindOutOfRange, "long must be between -180 and 180")
		}
	}

	if sub.DOB != nil {
		dob, err := time.Parse(models.DateLayout, strings.TrimSpace(*sub.DOB))
		now := v.Now()
		switch {
		case err != nil:
			add(models.FieldDOB, KindInvalidDate, "dob must be a calendar date (YYYY-MM-DD)")
		case dob.After(now):
			add(models.FieldDOB, KindInvalidDate, "dob cannot be in the future")
		default:
			patch.DOB = &dob
		}
	}

	if len(violations) > 0 {
		return nil, &Error{Violations: violations}
	}
	return patch, nil
}

var (
	errNotANumber  = fmt.Errorf("not a number")
	errOutOfBounds = fmt.Errorf("out of range")
)

func parseCoordinate(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotANumber
	}
	if f < -limit || f > limit {
		return 0, errOutOfBounds
	}
	return f, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
