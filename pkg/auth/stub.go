// Package auth provides the stubbed authentication provider.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account is a configured login.
type Account struct {
	Email    string      `json:"email" yaml:"email" toml:"email"`
	Password string      `json:"password" yaml:"password" toml:"password"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	Role     domain.Role `json:"role,omitempty" yaml:"role,omitempty" toml:"role"`
}

// DefaultAccounts are the demo logins of the prototype.
func DefaultAccounts() []Account {
	return []Account{
		{Email: "demo@toolshed.dev", Password: "demo1234", Name: "Demo User", Role: domain.RoleMember},
		{Email: "admin@toolshed.dev", Password: "admin1234", Name: "Admin", Role: domain.RoleAdmin},
	}
}

type credential struct {
	hash []byte
	user domain.User
}

// Stub authenticates against a fixed list of accounts.
// Passwords are kept as bcrypt hashes only.
type Stub struct {
	accounts map[string]credential
	decoy    []byte
}

// Option configures a Stub.
type Option func(*config)

type config struct {
	cost int
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(c *config) {
		c.cost = cost
	}
}

// userNamespace derives stable user ids from emails.
var userNamespace = uuid.MustParse("6f1b3c1e-8d4a-4f55-9a3e-0b7f2d1c9e10")

// NewStub hashes the given accounts.
func NewStub(accounts []Account, opts ...Option) (*Stub, error) {
	cfg := config{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Stub{accounts: make(map[string]credential, len(accounts))}
	for _, a := range accounts {
		email := normalize(a.Email)
		if email == "" || a.Password == "" {
			return nil, fmt.Errorf("account %q: email and password are required", a.Email)
		}
		if _, dup := s.accounts[email]; dup {
			return nil, fmt.Errorf("duplicate account %s", email)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cfg.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", email, err)
		}
		role := a.Role
		if role == "" {
			role = domain.RoleMember
		}
		s.accounts[email] = credential{
			hash: hash,
			user: domain.User{
				ID:    uuid.NewSHA1(userNamespace, []byte(email)).String(),
				Email: email,
				Name:  a.Name,
				Role:  role,
			},
		}
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte("decoy"), cfg.cost)
	if err != nil {
		return nil, err
	}
	s.decoy = decoy
	return s, nil
}

// SignIn implements ports.Authenticator.
func (s *Stub) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cred, ok := s.accounts[normalize(email)]
	if !ok {
		// Compare anyway so unknown emails take as long as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(s.decoy, []byte(password))
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrAuthFailure)
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrAuthFailure)
	}
	u := cred.user
	return &u, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
