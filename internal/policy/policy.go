package policy

import (
	"github.com/jon4hz/foxtip/internal/database"
)

// Rule grants admin capability to some users.
type Rule interface {
	Name() string
	GrantsAdmin(*database.User) bool
}

// Engine is the authorization policy. A user is admin as soon as one rule grants it.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new policy engine.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{
		rules: rules,
	}
}

// Default returns the policy used by the server: the stored role, plus the owner rule.
func Default(ownerEmail string) *Engine {
	return NewEngine(RoleRule{}, NewOwnerRule(ownerEmail))
}

// IsAdmin reports whether any rule grants admin capability.
func (e *Engine) IsAdmin(user *database.User) bool {
	_, ok := e.GrantingRule(user)
	return ok
}

// GrantingRule returns the name of the first rule that grants admin capability.
func (e *Engine) GrantingRule(user *database.User) (string, bool) {
	if user == nil {
		return "", false
	}
	for _, rule := range e.rules {
		if rule.GrantsAdmin(user) {
			return rule.Name(), true
		}
	}
	return "", false
}
