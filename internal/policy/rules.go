package policy

import (
	"github.com/jon4hz/foxtip/internal/database"
)

// RoleRule grants admin to accounts with the admin role.
type RoleRule struct{}

var _ Rule = RoleRule{}

func (RoleRule) Name() string { return "role" }

func (RoleRule) GrantsAdmin(user *database.User) bool {
	return user.IsAdmin()
}

// OwnerRule grandfathers the owner account: its email is admin regardless of the stored role.
// An empty owner email disables the rule.
type OwnerRule struct {
	email string
}

var _ Rule = OwnerRule{}

// NewOwnerRule creates the owner rule for email.
func NewOwnerRule(email string) OwnerRule {
	return OwnerRule{email: database.NormalizeEmail(email)}
}

func (OwnerRule) Name() string { return "owner" }

func (r OwnerRule) GrantsAdmin(user *database.User) bool {
	if r.email == "" {
		return false
	}
	return database.NormalizeEmail(user.Email) == r.email
}
