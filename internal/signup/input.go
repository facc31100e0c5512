// Package signup implements the three-step registration wizard: per-step
// validation, the step state machine and the single in-flight submission.
// It has no UI dependency; views drive a Wizard and render its state.
package signup

// AccountType is the kind of account being registered.
type AccountType string

const (
	Personal AccountType = "personal"
	Merchant AccountType = "merchant"
)

// AccountTypes lists the selectable account types in display order.
var AccountTypes = []AccountType{Personal, Merchant}

// Title returns the display name, e.g. "Personal".
func (t AccountType) Title() string {
	switch t {
	case Personal:
		return "Personal"
	case Merchant:
		return "Merchant"
	}
	return string(t)
}

// Input is the record collected by the wizard.
type Input struct {
	FirstName       string      `validate:"min=2"`
	LastName        string      `validate:"min=2"`
	Email           string      `validate:"email"`
	Password        string      `validate:"min=8"`
	ConfirmPassword string
	AccountType     AccountType `validate:"oneof=personal merchant"`
	AgreeToTerms    bool        `validate:"required"`
}

// NewInput returns an empty record with the default account type selected.
func NewInput() Input {
	return Input{AccountType: Personal}
}

// Field names a single input field. Values match the keys used in
// FieldErrors.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldAccountType     Field = "accountType"
	FieldAgreeToTerms    Field = "agreeToTerms"
)

// Fields lists every field in form order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldConfirmPassword,
	FieldAccountType,
	FieldAgreeToTerms,
}

// Label returns the human-readable field label.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "first name"
	case FieldLastName:
		return "last name"
	case FieldEmail:
		return "email"
	case FieldPassword:
		return "password"
	case FieldConfirmPassword:
		return "confirm password"
	case FieldAccountType:
		return "account type"
	case FieldAgreeToTerms:
		return "terms"
	}
	return string(f)
}

// structField maps a Field to its Input struct field name.
var structField = map[Field]string{
	FieldFirstName:       "FirstName",
	FieldLastName:        "LastName",
	FieldEmail:           "Email",
	FieldPassword:        "Password",
	FieldConfirmPassword: "ConfirmPassword",
	FieldAccountType:     "AccountType",
	FieldAgreeToTerms:    "AgreeToTerms",
}

var messages = map[Field]string{
	FieldFirstName:       "First name must be at least 2 characters",
	FieldLastName:        "Last name must be at least 2 characters",
	FieldEmail:           "Please enter a valid email address",
	FieldPassword:        "Password must be at least 8 characters",
	FieldConfirmPassword: "Passwords don't match",
	FieldAccountType:     "Please select an account type",
	FieldAgreeToTerms:    "You must agree to the terms and conditions",
}
