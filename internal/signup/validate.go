package signup

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldErrors maps a failing field to its message. It is the field
// validation error kind: surfaced inline, never fatal.
type FieldErrors map[Field]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "no field errors"
	}

	keys := make([]string, 0, len(e))
	for f := range e {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[Field(k)]
	}
	return "invalid " + strings.Join(parts, "; ")
}

// Validation is the outcome of checking a set of fields.
type Validation struct {
	Valid  bool
	Errors FieldErrors
}

// ValidateStep checks only the fields owned by step, so later unfilled
// steps never block earlier navigation. StepAccountType and the submit
// states check the whole record.
func ValidateStep(step State, in Input) Validation {
	return check(in, stepFields(step))
}

// Validate checks the whole record, including the terms agreement.
func Validate(in Input) Validation {
	return check(in, Fields)
}

func stepFields(step State) []Field {
	switch step {
	case StepIdentity:
		return []Field{FieldFirstName, FieldLastName, FieldEmail}
	case StepCredentials:
		return []Field{FieldPassword, FieldConfirmPassword, FieldAccountType}
	}
	return Fields
}

// check runs single-field constraints for fields, then the password
// confirmation rule over the record when ConfirmPassword is in scope.
func check(in Input, fields []Field) Validation {
	errs := FieldErrors{}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, structField[f])
	}

	if err := validate.StructPartial(in, names...); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// only reachable on a programming error in the tags
			panic("signup: validate: " + err.Error())
		}
		for _, fe := range verrs {
			f := fieldFor(fe.StructField())
			if f == "" {
				continue
			}
			errs[f] = messages[f]
		}
	}

	if contains(fields, FieldConfirmPassword) && in.ConfirmPassword != in.Password {
		errs[FieldConfirmPassword] = messages[FieldConfirmPassword]
	}

	if len(errs) == 0 {
		return Validation{Valid: true}
	}
	return Validation{Errors: errs}
}

func fieldFor(name string) Field {
	for f, n := range structField {
		if n == name {
			return f
		}
	}
	return ""
}

func contains(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
