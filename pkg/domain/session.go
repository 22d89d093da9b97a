package domain

import "fmt"

// Theme is the colour scheme of a session.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Validate rejects themes other than light and dark.
func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("%w: theme %q", ErrInvalidParams, t)
}

// Role is the authorization level of a user.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is the signed-in principal returned by an authenticator.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user may open admin screens.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionContext replaces the ambient theme and auth contexts: it is created
// once with the controller and owned by it for the whole session.
type SessionContext struct {
	Theme Theme `json:"theme"`
	User  *User `json:"user,omitempty"`
}

// SignedIn reports whether a user is attached.
func (c SessionContext) SignedIn() bool {
	return c.User != nil
}
