package store

import (
	"strings"

	"github.com/goliatone/go-smooch"
	"github.com/google/uuid"
)

// UserIdentity adapts a User into smooch.KeyedIdentity for binding.
type UserIdentity struct {
	user *User
}

var _ smooch.KeyedIdentity = UserIdentity{}

// NewIdentity returns an identity adapter for the provided user.
func NewIdentity(user *User) smooch.KeyedIdentity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// User returns the adapted record.
func (u UserIdentity) User() *User {
	return u.user
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil || u.user.ID == uuid.Nil {
		return ""
	}
	return u.user.ID.String()
}

// Lookup resolves column keys first, then string metadata values.
func (u UserIdentity) Lookup(key string) (string, bool) {
	if u.user == nil {
		return "", false
	}

	var val string
	switch strings.ToLower(key) {
	case KeyID:
		val = u.ID()
	case KeyEmail:
		val = u.user.Email
	case KeyUsername:
		val = u.user.Username
	case KeyExternalID:
		val = u.user.ExternalID
	case KeyPhone:
		val = u.user.Phone
	default:
		raw, ok := u.user.Metadata[key]
		if !ok {
			return "", false
		}
		s, ok := raw.(string)
		return s, ok && s != ""
	}

	return val, val != ""
}
