// Package cli implements zpay's command-line subcommands.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpay/internal/account"
	"github.com/zarlcorp/zpay/internal/signin"
	"github.com/zarlcorp/zpay/internal/signup"
	"golang.org/x/term"
)

// DataDir returns the default data directory for zpay.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zpay"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zpay"
	}
	return home + "/.local/share/zpay"
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new master password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the store has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// OpenStore prompts for the master password and opens the store, returning
// the store and the account store bound to it. Callers close the store.
func OpenStore(dir string) (*zstore.Store, *account.Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	var pass string
	var err error
	if IsFirstRun(dir) {
		pass, err = ReadNewPassword(os.Stderr)
	} else {
		pass, err = ReadPassword("master password: ", os.Stderr)
	}
	if err != nil {
		return nil, nil, err
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	s, err := zstore.Open(fsys, []byte(pass))
	if err != nil {
		return nil, nil, err
	}

	accounts, err := account.Open(s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	return s, accounts, nil
}

// CmdAccounts lists the accounts registered on this device.
func CmdAccounts(args []string) {
	s, accounts, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	all, err := accounts.List()
	if err != nil {
		fatal(fmt.Errorf("list: %w", err))
	}

	if err := printAccounts(os.Stdout, all, hasFlag(args, "--json")); err != nil {
		fatal(err)
	}
}

// CmdLogin checks an account's password.
func CmdLogin(ctx context.Context, email string) {
	s, accounts, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	pass, err := ReadPassword("account password: ", os.Stderr)
	if err != nil {
		fatal(err)
	}

	a, err := runLogin(ctx, os.Stdout, accounts, email, pass)
	if err != nil {
		s.Close()
		fatal(err)
	}
	printAccount(os.Stdout, a)
}

// CmdSignup registers a new account by prompting for each wizard step.
func CmdSignup(ctx context.Context) {
	s, accounts, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	p := newPrompter(os.Stdin, os.Stderr)
	p.secret = func(prompt string) (string, error) {
		return ReadPassword(prompt, os.Stderr)
	}

	ref, err := runSignup(ctx, p, accounts)
	if err != nil {
		s.Close()
		fatal(err)
	}

	a, err := accounts.Get(ref.ID)
	if err != nil {
		s.Close()
		fatal(err)
	}
	printAccount(os.Stdout, a)
}

// accountGetter is the part of account.Store runLogin needs beyond
// authentication.
type accountGetter interface {
	signin.Authenticator
	Get(id string) (account.Account, error)
}

func runLogin(ctx context.Context, w io.Writer, accounts accountGetter, email, pass string) (account.Account, error) {
	// failures reach the user once, through the returned error
	notify := signup.NotifierFunc(func(k signup.Kind, msg string) {
		if k == signup.KindSuccess {
			fmt.Fprintln(w, msg)
		}
	})

	stay := signup.NavigatorFunc(func(signup.Route) {})

	in := signin.Input{Email: email, Password: pass}
	ref, err := signin.Attempt(ctx, accounts, in, stay, notify)
	if err != nil {
		return account.Account{}, err
	}
	return accounts.Get(ref.ID)
}

// prompter reads one answer per line. secret reads answers that must not
// echo; it defaults to a plain line read.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func(prompt string) (string, error)
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(r), out: w}
	p.secret = p.line
	return p
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return strings.TrimSpace(s), nil
}

// runSignup walks the wizard one step at a time, reprompting a step until
// it validates. A failed submission ends the run; the wizard has already
// reported it.
func runSignup(ctx context.Context, p *prompter, creator signup.AccountCreator) (signup.AccountRef, error) {
	notify := signup.NotifierFunc(func(_ signup.Kind, msg string) {
		fmt.Fprintln(p.out, msg)
	})
	w := signup.New(creator, nil, notify)

	for {
		var err error
		switch w.State() {
		case signup.StepIdentity:
			err = promptIdentity(p, w)
		case signup.StepCredentials:
			err = promptCredentials(p, w)
		case signup.StepAccountType:
			var ref signup.AccountRef
			ref, err = promptAccountType(ctx, p, w)
			if err == nil {
				return ref, nil
			}
			var fe signup.FieldErrors
			if errors.As(err, &fe) {
				printErrors(p.out, fe)
				continue
			}
		default:
			return signup.AccountRef{}, fmt.Errorf("signup: unexpected state %s", w.State())
		}
		if err != nil {
			return signup.AccountRef{}, err
		}
	}
}

func promptIdentity(p *prompter, w *signup.Wizard) error {
	fmt.Fprintf(p.out, "\nstep 1 of %d: basic information\n", signup.TotalSteps)
	in := w.Input()
	var err error
	if in.FirstName, err = p.line("first name: "); err != nil {
		return err
	}
	if in.LastName, err = p.line("last name: "); err != nil {
		return err
	}
	if in.Email, err = p.line("email: "); err != nil {
		return err
	}
	advance(p, w, in)
	return nil
}

func promptCredentials(p *prompter, w *signup.Wizard) error {
	fmt.Fprintf(p.out, "\nstep 2 of %d: password\n", signup.TotalSteps)
	in := w.Input()
	var err error
	if in.Password, err = p.secret("password: "); err != nil {
		return err
	}
	if in.ConfirmPassword, err = p.secret("confirm password: "); err != nil {
		return err
	}
	advance(p, w, in)
	return nil
}

func promptAccountType(ctx context.Context, p *prompter, w *signup.Wizard) (signup.AccountRef, error) {
	fmt.Fprintf(p.out, "\nstep 3 of %d: account type\n", signup.TotalSteps)
	in := w.Input()

	t, err := p.line(fmt.Sprintf("account type [personal/merchant] (%s): ", in.AccountType))
	if err != nil {
		return signup.AccountRef{}, err
	}
	if t != "" {
		in.AccountType = signup.AccountType(strings.ToLower(t))
	}

	agree, err := p.line("agree to the terms of service and privacy policy? [y/N]: ")
	if err != nil {
		return signup.AccountRef{}, err
	}
	in.AgreeToTerms = isYes(agree)

	w.Edit(func(cur *signup.Input) { *cur = in })
	return w.Submit(ctx)
}

// advance stores in on the wizard and tries to move forward, printing any
// errors.
func advance(p *prompter, w *signup.Wizard, in signup.Input) {
	w.Edit(func(cur *signup.Input) { *cur = in })
	if v := w.Next(); !v.Valid {
		printErrors(p.out, v.Errors)
	}
}

func printErrors(w io.Writer, errs signup.FieldErrors) {
	for _, f := range signup.Fields {
		if msg, ok := errs[f]; ok {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}

func printAccounts(w io.Writer, all []account.Account, asJSON bool) error {
	if asJSON {
		return printJSON(w, accountViews(all))
	}

	if len(all) == 0 {
		fmt.Fprintln(w, "no accounts")
		return nil
	}

	for _, a := range all {
		fmt.Fprintf(w, "  %-8s %-24s %-30s %-9s %s\n",
			shortID(a.ID),
			a.Name(),
			a.Email,
			a.Type,
			a.CreatedAt.Format("2006-01-02"),
		)
	}
	return nil
}

func printAccount(w io.Writer, a account.Account) {
	fmt.Fprintf(w, "  id:      %s\n", a.ID)
	fmt.Fprintf(w, "  name:    %s\n", a.Name())
	fmt.Fprintf(w, "  email:   %s\n", a.Email)
	fmt.Fprintf(w, "  type:    %s\n", a.Type)
	fmt.Fprintf(w, "  created: %s\n", a.CreatedAt.Format("2006-01-02"))
}

// accountView is the JSON shape for listings; it leaves out the hash.
type accountView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

func accountViews(all []account.Account) []accountView {
	views := make([]accountView, 0, len(all))
	for _, a := range all {
		views = append(views, accountView{
			ID:        a.ID,
			Name:      a.Name(),
			Email:     a.Email,
			Type:      string(a.Type),
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		})
	}
	return views
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "zpay: %v\n", err)
	os.Exit(1)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}
