package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpay/internal/signin"
	"github.com/zarlcorp/zpay/internal/signup"
	"golang.org/x/crypto/bcrypt"
)

const collectionName = "accounts"

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("account not found")

	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = signup.ErrEmailTaken

	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = signin.ErrInvalidCredentials
)

// HashCost is the bcrypt cost for new password hashes.
var HashCost = bcrypt.DefaultCost

// Store persists accounts in a zstore collection.
type Store struct {
	mu  sync.Mutex
	col *zstore.Collection[Account]
	now func() time.Time
}

// Open binds a Store to the accounts collection of an open zstore.
func Open(s *zstore.Store) (*Store, error) {
	col, err := zstore.NewCollection[Account](s, collectionName)
	if err != nil {
		return nil, fmt.Errorf("open accounts: %w", err)
	}
	return &Store{col: col, now: time.Now}, nil
}

// CreateAccount registers a validated signup record.
func (s *Store) CreateAccount(ctx context.Context, in signup.Input) (signup.AccountRef, error) {
	if err := ctx.Err(); err != nil {
		return signup.AccountRef{}, err
	}

	if v := signup.Validate(in); !v.Valid {
		return signup.AccountRef{}, fmt.Errorf("create account: %w", v.Errors)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(in.Email)
	if _, err := s.findByEmail(email); err == nil {
		return signup.AccountRef{}, fmt.Errorf("create account: %w", ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return signup.AccountRef{}, fmt.Errorf("create account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), HashCost)
	if err != nil {
		return signup.AccountRef{}, fmt.Errorf("create account: hash password: %w", err)
	}

	a := Account{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Type:         in.AccountType,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.col.Put(a.ID, a); err != nil {
		return signup.AccountRef{}, fmt.Errorf("create account: save: %w", err)
	}

	return a.Ref(), nil
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(ctx context.Context, email, password string) (signup.AccountRef, error) {
	if err := ctx.Err(); err != nil {
		return signup.AccountRef{}, err
	}

	s.mu.Lock()
	a, err := s.findByEmail(normalizeEmail(email))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return signup.AccountRef{}, ErrInvalidCredentials
		}
		return signup.AccountRef{}, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return signup.AccountRef{}, ErrInvalidCredentials
	}

	return a.Ref(), nil
}

// Get returns a single account by ID.
func (s *Store) Get(id string) (Account, error) {
	a, err := s.col.Get(id)
	if err != nil {
		return Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

// List returns all accounts, newest first.
func (s *Store) List() ([]Account, error) {
	all, err := s.col.List()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	// zstore does not guarantee order
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// FindByEmail looks an account up by email, ignoring case.
func (s *Store) FindByEmail(email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByEmail(normalizeEmail(email))
}

func (s *Store) findByEmail(email string) (Account, error) {
	all, err := s.col.List()
	if err != nil {
		return Account{}, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range all {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
