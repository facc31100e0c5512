package signup

import (
	"context"
	"errors"
)

// ErrEmailTaken is returned by AccountCreator implementations when the
// email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// AccountRef identifies a created or authenticated account.
type AccountRef struct {
	ID    string
	Email string
	Type  AccountType
}

// AccountCreator creates accounts from a validated record.
type AccountCreator interface {
	CreateAccount(ctx context.Context, in Input) (AccountRef, error)
}

// Route is a destination the navigator can move to.
type Route string

const (
	RouteLanding   Route = "landing"
	RouteLogin     Route = "login"
	RouteSignup    Route = "signup"
	RouteDashboard Route = "dashboard"
)

// Navigator moves the user to another screen. Fire and forget.
type Navigator interface {
	GoTo(route Route)
}

// Kind classifies a notification.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notifier surfaces an outcome to the user. Fire and forget.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) GoTo(r Route) { f(r) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Kind, string)

func (f NotifierFunc) Notify(k Kind, msg string) { f(k, msg) }

type discard struct{}

func (discard) GoTo(Route)          {}
func (discard) Notify(Kind, string) {}
