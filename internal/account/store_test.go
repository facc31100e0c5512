package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpay/internal/signup"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	HashCost = bcrypt.MinCost
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	fs := zfilesystem.NewMemFS()
	zs, err := zstore.Open(fs, []byte("testpass"))
	if err != nil {
		t.Fatalf("open zstore: %v", err)
	}
	t.Cleanup(func() { zs.Close() })

	s, err := Open(zs)
	if err != nil {
		t.Fatalf("open accounts: %v", err)
	}
	return s
}

func testInput(email string) signup.Input {
	return signup.Input{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           email,
		Password:        "longpass1",
		ConfirmPassword: "longpass1",
		AccountType:     signup.Personal,
		AgreeToTerms:    true,
	}
}

func TestCreateAccount(t *testing.T) {
	s := openTestStore(t)

	ref, err := s.CreateAccount(context.Background(), testInput("Jane@Example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if ref.ID == "" {
		t.Fatal("ref should carry an id")
	}
	if ref.Email != "jane@example.com" {
		t.Errorf("email = %q, want lower-cased", ref.Email)
	}
	if ref.Type != signup.Personal {
		t.Errorf("type = %q", ref.Type)
	}

	a, err := s.Get(ref.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Name() != "Jane Doe" {
		t.Errorf("name = %q", a.Name())
	}
	if a.PasswordHash == "" || strings.Contains(a.PasswordHash, "longpass1") {
		t.Errorf("password should be stored hashed, got %q", a.PasswordHash)
	}
	if a.CreatedAt.IsZero() {
		t.Error("created at should be set")
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.CreateAccount(context.Background(), testInput("jane@example.com")); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := s.CreateAccount(context.Background(), testInput("JANE@Example.com"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if !errors.Is(err, signup.ErrEmailTaken) {
		t.Error("should match the wizard's sentinel")
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("accounts = %d, want 1", len(all))
	}
}

func TestCreateAccountRejectsPaddedEmail(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateAccount(context.Background(), testInput("  jane@example.com "))

	var fe signup.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if _, ok := fe[signup.FieldEmail]; !ok {
		t.Errorf("errors = %v, want an email error", fe)
	}
}

func TestCreateAccountRejectsInvalidRecord(t *testing.T) {
	s := openTestStore(t)
	in := testInput("jane@example.com")
	in.AgreeToTerms = false

	_, err := s.CreateAccount(context.Background(), in)

	var ferrs signup.FieldErrors
	if !errors.As(err, &ferrs) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
}

func TestCreateAccountCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateAccount(ctx, testInput("jane@example.com")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := openTestStore(t)
	ref, err := s.CreateAccount(context.Background(), testInput("jane@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"match", "jane@example.com", "longpass1", nil},
		{"email case ignored", "JANE@example.com", "longpass1", nil},
		{"wrong password", "jane@example.com", "longpass2", ErrInvalidCredentials},
		{"unknown email", "john@example.com", "longpass1", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticate: %v", err)
			}
			if got.ID != ref.ID {
				t.Errorf("id = %q, want %q", got.ID, ref.ID)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := s.CreateAccount(context.Background(), testInput(email)); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Email != "c@example.com" || all[2].Email != "a@example.com" {
		t.Errorf("order = %s, %s, %s", all[0].Email, all[1].Email, all[2].Email)
	}
}

func TestFindByEmail(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.CreateAccount(context.Background(), testInput("jane@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.FindByEmail("Jane@Example.com"); err != nil {
		t.Errorf("find: %v", err)
	}
	if _, err := s.FindByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("missing"); err == nil {
		t.Error("expected error for missing account")
	}
}

func TestWizardWithStore(t *testing.T) {
	s := openTestStore(t)
	w := signup.New(s, nil, nil)

	w.Edit(func(in *signup.Input) { *in = testInput("jane@example.com") })
	w.Next()
	w.Next()

	ref, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if w.State() != signup.StateSubmitted {
		t.Errorf("state = %v", w.State())
	}

	// a second wizard for the same email fails and stays on the last step
	w2 := signup.New(s, nil, nil)
	w2.Edit(func(in *signup.Input) { *in = testInput("jane@example.com") })
	w2.Next()
	w2.Next()

	if _, err := w2.Submit(context.Background()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if w2.State() != signup.StepAccountType {
		t.Errorf("state = %v, want account type", w2.State())
	}

	if _, err := s.Authenticate(context.Background(), "jane@example.com", "longpass1"); err != nil {
		t.Errorf("authenticate created account %s: %v", ref.ID, err)
	}
}
