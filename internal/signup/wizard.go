package signup

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// State is the wizard's position. The three steps are linear; the submit
// states follow the last step.
type State int

const (
	StepIdentity State = iota + 1
	StepCredentials
	StepAccountType
	StateSubmitting
	StateSubmitted
)

// TotalSteps is the number of input steps.
const TotalSteps = 3

func (s State) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepCredentials:
		return "credentials"
	case StepAccountType:
		return "account type"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Step returns the 1-based step number for display. Submit states report
// the last step.
func (s State) Step() int {
	switch s {
	case StepIdentity:
		return 1
	case StepCredentials:
		return 2
	}
	return TotalSteps
}

// Progress returns step/TotalSteps in [0, 1].
func Progress(s State) float64 {
	return float64(s.Step()) / TotalSteps
}

var (
	// ErrInFlight is returned when a submission is already running.
	ErrInFlight = errors.New("submission already in progress")

	// ErrSubmitted is returned once the wizard reached its terminal state.
	ErrSubmitted = errors.New("registration already submitted")

	// ErrNotLastStep is returned when submitting before the final step.
	ErrNotLastStep = errors.New("submit is only allowed from the final step")

	// ErrNotSubmitting is returned by Settle without a matching Begin.
	ErrNotSubmitting = errors.New("no submission in progress")
)

// SubmissionError wraps a failure from the account-creation collaborator.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submit registration: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Transition computes the forward move from a step. A step that fails
// validation stays put. It is pure: the same input always yields the same
// result. The final step and the submit states never move forward here;
// use Wizard.Submit.
func Transition(from State, in Input) (State, Validation) {
	switch from {
	case StepIdentity, StepCredentials:
		v := ValidateStep(from, in)
		if !v.Valid {
			return from, v
		}
		return from + 1, v
	case StepAccountType:
		return from, ValidateStep(from, in)
	}
	return from, Validation{}
}

// Wizard owns one registration record for its lifetime. It is driven by a
// single event loop; only CreateAccount may run elsewhere.
type Wizard struct {
	input    Input
	state    State
	errs     FieldErrors
	ref      AccountRef
	accounts AccountCreator
	nav      Navigator
	notify   Notifier
}

// New creates a wizard on the first step. nav and notify may be nil.
func New(accounts AccountCreator, nav Navigator, notify Notifier) *Wizard {
	if nav == nil {
		nav = discard{}
	}
	if notify == nil {
		notify = discard{}
	}
	return &Wizard{
		input:    NewInput(),
		state:    StepIdentity,
		accounts: accounts,
		nav:      nav,
		notify:   notify,
	}
}

// State returns the current state.
func (w *Wizard) State() State { return w.state }

// Input returns a copy of the current record.
func (w *Wizard) Input() Input { return w.input }

// Progress returns the display progress for the current state.
func (w *Wizard) Progress() float64 { return Progress(w.state) }

// Errors returns the per-field errors from the last forward attempt.
func (w *Wizard) Errors() FieldErrors { return maps.Clone(w.errs) }

// Account returns the created account once the wizard is submitted.
func (w *Wizard) Account() (AccountRef, bool) {
	return w.ref, w.state == StateSubmitted
}

// Busy reports whether a submission is in flight.
func (w *Wizard) Busy() bool { return w.state == StateSubmitting }

// Edit applies fn to the record. Edits are ignored while submitting or
// after submission and Edit reports false.
func (w *Wizard) Edit(fn func(*Input)) bool {
	if w.state == StateSubmitting || w.state == StateSubmitted {
		return false
	}
	fn(&w.input)
	return true
}

// Next validates the current step and advances when it passes.
func (w *Wizard) Next() Validation {
	next, v := Transition(w.state, w.input)
	w.state = next
	w.errs = v.Errors
	return v
}

// Back moves to the previous step without validation, keeping every
// value. It reports whether a move happened.
func (w *Wizard) Back() bool {
	switch w.state {
	case StepCredentials, StepAccountType:
		w.state--
		w.errs = nil
		return true
	}
	return false
}

// Begin validates the whole record and enters the submitting state,
// returning the snapshot to hand to the collaborator. Every call after a
// successful Begin fails with ErrInFlight until Settle.
func (w *Wizard) Begin() (Input, error) {
	switch w.state {
	case StateSubmitting:
		return Input{}, ErrInFlight
	case StateSubmitted:
		return Input{}, ErrSubmitted
	case StepAccountType:
	default:
		return Input{}, ErrNotLastStep
	}

	v := Validate(w.input)
	w.errs = v.Errors
	if !v.Valid {
		return Input{}, v.Errors
	}

	w.state = StateSubmitting
	return w.input, nil
}

// CreateAccount calls the account-creation collaborator. It reads no
// wizard state, so it may run off the event loop between Begin and Settle.
func (w *Wizard) CreateAccount(ctx context.Context, in Input) (AccountRef, error) {
	return w.accounts.CreateAccount(ctx, in)
}

// Settle records the collaborator's outcome. On success the wizard is
// submitted, the user is notified and sent to the dashboard. On failure it
// returns to the final step with the record intact and a *SubmissionError.
func (w *Wizard) Settle(ref AccountRef, err error) error {
	if w.state != StateSubmitting {
		return ErrNotSubmitting
	}

	if err != nil {
		w.state = StepAccountType
		w.notify.Notify(KindError, failureMessage(err))
		return &SubmissionError{Err: err}
	}

	w.state = StateSubmitted
	w.ref = ref
	w.notify.Notify(KindSuccess, w.input.AccountType.Title()+" account created successfully!")
	w.nav.GoTo(RouteDashboard)
	return nil
}

// Submit runs Begin, CreateAccount and Settle in sequence.
func (w *Wizard) Submit(ctx context.Context) (AccountRef, error) {
	in, err := w.Begin()
	if err != nil {
		return AccountRef{}, err
	}

	ref, err := w.CreateAccount(ctx, in)
	if err := w.Settle(ref, err); err != nil {
		return AccountRef{}, err
	}
	return ref, nil
}

func failureMessage(err error) string {
	if errors.Is(err, ErrEmailTaken) {
		return "An account with this email already exists."
	}
	return "Registration failed. Please try again."
}
