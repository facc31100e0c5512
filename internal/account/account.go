// Package account stores registered accounts in an encrypted zstore
// collection. Store is the signup wizard's account-creation collaborator and
// the sign-in authenticator.
package account

import (
	"time"

	"github.com/zarlcorp/zpay/internal/signup"
)

// Account is a registered user. Passwords are kept only as bcrypt hashes.
type Account struct {
	ID           string             `json:"id"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	Email        string             `json:"email"`
	Type         signup.AccountType `json:"type"`
	PasswordHash string             `json:"password_hash"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Name returns "First Last".
func (a Account) Name() string {
	return a.FirstName + " " + a.LastName
}

// Ref returns the reference handed back to the wizard.
func (a Account) Ref() signup.AccountRef {
	return signup.AccountRef{ID: a.ID, Email: a.Email, Type: a.Type}
}
