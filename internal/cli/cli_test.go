package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpay/internal/account"
	"github.com/zarlcorp/zpay/internal/signup"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	account.HashCost = bcrypt.MinCost
}

func openAccounts(t *testing.T) *account.Store {
	t.Helper()
	zs, err := zstore.Open(zfilesystem.NewMemFS(), []byte("testpass"))
	if err != nil {
		t.Fatalf("open zstore: %v", err)
	}
	t.Cleanup(func() { zs.Close() })

	s, err := account.Open(zs)
	if err != nil {
		t.Fatalf("open accounts: %v", err)
	}
	return s
}

func TestDataDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{
			name: "xdg set",
			xdg:  "/custom/data",
			want: "/custom/data/zpay",
		},
		{
			name: "xdg empty falls back to home",
			xdg:  "",
			want: "/.local/share/zpay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tt.xdg)

			got := DataDir()
			if tt.xdg != "" {
				if got != tt.want {
					t.Errorf("DataDir() = %s, want %s", got, tt.want)
				}
			} else {
				if !strings.HasSuffix(got, tt.want) {
					t.Errorf("DataDir() = %s, want suffix %s", got, tt.want)
				}
			}
		})
	}
}

func TestHasFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want bool
	}{
		{"present", []string{"--json"}, "--json", true},
		{"absent", []string{"--verbose"}, "--json", false},
		{"empty", nil, "--json", false},
		{"case insensitive", []string{"--JSON"}, "--json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasFlag(tt.args, tt.flag)
			if got != tt.want {
				t.Errorf("hasFlag(%v, %s) = %v, want %v", tt.args, tt.flag, got, tt.want)
			}
		})
	}
}

func TestIsFirstRun(t *testing.T) {
	dir := t.TempDir()
	if !IsFirstRun(dir) {
		t.Error("expected first run for empty dir")
	}

	os.WriteFile(dir+"/salt", []byte("test"), 0o600)
	if IsFirstRun(dir) {
		t.Error("expected not first run after salt exists")
	}
}

func TestRunSignup(t *testing.T) {
	t.Run("reprompts invalid steps then creates the account", func(t *testing.T) {
		accounts := openAccounts(t)
		input := strings.Join([]string{
			"A", "Lee", "al@example.com", // first name too short
			"Al", "Lee", "al@example.com",
			"longpass1", "different1", // mismatch
			"longpass1", "longpass1",
			"merchant", "n", // terms declined
			"", "y",
		}, "\n") + "\n"

		var out bytes.Buffer
		p := newPrompter(strings.NewReader(input), &out)

		ref, err := runSignup(context.Background(), p, accounts)
		if err != nil {
			t.Fatalf("runSignup: %v\noutput:\n%s", err, out.String())
		}
		if ref.Type != signup.Merchant {
			t.Errorf("type = %q, want %q", ref.Type, signup.Merchant)
		}

		for _, want := range []string{
			"First name must be at least 2 characters",
			"Passwords don't match",
			"You must agree to the terms and conditions",
			"Merchant account created successfully!",
		} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q", want)
			}
		}

		a, err := accounts.Get(ref.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if a.Name() != "Al Lee" {
			t.Errorf("name = %q, want %q", a.Name(), "Al Lee")
		}
	})

	t.Run("duplicate email fails the submission", func(t *testing.T) {
		accounts := openAccounts(t)
		input := "Al\nLee\nal@example.com\nlongpass1\nlongpass1\n\ny\n"

		p := newPrompter(strings.NewReader(input), &bytes.Buffer{})
		if _, err := runSignup(context.Background(), p, accounts); err != nil {
			t.Fatalf("first signup: %v", err)
		}

		var out bytes.Buffer
		p = newPrompter(strings.NewReader(input), &out)
		_, err := runSignup(context.Background(), p, accounts)

		var se *signup.SubmissionError
		if !errors.As(err, &se) {
			t.Fatalf("err = %v, want *SubmissionError", err)
		}
		if !errors.Is(err, account.ErrEmailTaken) {
			t.Errorf("err = %v, want ErrEmailTaken", err)
		}
		if !strings.Contains(out.String(), "An account with this email already exists.") {
			t.Errorf("output missing duplicate message:\n%s", out.String())
		}
	})

	t.Run("end of input", func(t *testing.T) {
		accounts := openAccounts(t)
		p := newPrompter(strings.NewReader("Al\nLee\n"), &bytes.Buffer{})

		if _, err := runSignup(context.Background(), p, accounts); err == nil {
			t.Fatal("expected error on end of input")
		}
	})

	t.Run("secret reader is used for passwords", func(t *testing.T) {
		accounts := openAccounts(t)
		p := newPrompter(strings.NewReader("Al\nLee\nal@example.com\n\ny\n"), &bytes.Buffer{})

		var asked []string
		p.secret = func(prompt string) (string, error) {
			asked = append(asked, prompt)
			return "longpass1", nil
		}

		if _, err := runSignup(context.Background(), p, accounts); err != nil {
			t.Fatalf("runSignup: %v", err)
		}
		if len(asked) != 2 {
			t.Errorf("secret prompts = %v, want 2", asked)
		}
	})
}

func TestRunLogin(t *testing.T) {
	accounts := openAccounts(t)
	p := newPrompter(strings.NewReader("Al\nLee\nal@example.com\nlongpass1\nlongpass1\n\ny\n"), &bytes.Buffer{})
	if _, err := runSignup(context.Background(), p, accounts); err != nil {
		t.Fatalf("signup: %v", err)
	}

	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr error
		wantOut string
	}{
		{"valid", "al@example.com", "longpass1", nil, "Login successful! Welcome back."},
		{"wrong password", "al@example.com", "wrongpass", account.ErrInvalidCredentials, ""},
		{"unknown email", "bo@example.com", "longpass1", account.ErrInvalidCredentials, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a, err := runLogin(context.Background(), &out, accounts, tt.email, tt.pass)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if a.Email != tt.email {
					t.Errorf("email = %q, want %q", a.Email, tt.email)
				}
			}

			if tt.wantOut == "" {
				if out.Len() != 0 {
					t.Errorf("failure printed %q; the error is reported by the caller", out.String())
				}
			} else if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestPrintAccounts(t *testing.T) {
	all := []account.Account{{
		ID:           "0f8fad5b-d9cb-469f-a165-70867728950e",
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Type:         signup.Personal,
		PasswordHash: "$2a$04$secret",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		if err := printAccounts(&out, nil, false); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "no accounts") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		if err := printAccounts(&out, all, false); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"0f8fad5b", "Jane Doe", "jane@example.com", "personal", "2026-03-01"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("json omits the hash", func(t *testing.T) {
		var out bytes.Buffer
		if err := printAccounts(&out, all, true); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(out.String(), "secret") {
			t.Errorf("json leaked password hash:\n%s", out.String())
		}

		var got []map[string]string
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got) != 1 || got[0]["email"] != "jane@example.com" {
			t.Errorf("got %v", got)
		}
	})
}
