package store

import (
	"time"

	"github.com/goliatone/go-smooch"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Lookup keys understood by UserIdentity besides metadata entries.
const (
	KeyID         = "id"
	KeyEmail      = "email"
	KeyUsername   = "username"
	KeyExternalID = "external_id"
	KeyPhone      = "phone"
)

// User is an application user that can be bound to a Smooch appUser.
type User struct {
	bun.BaseModel `bun:"table:smooch_users,alias:su"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ExternalID    string         `bun:"external_id" json:"external_id,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName     string         `bun:"first_name" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name" json:"last_name,omitempty"`
	Phone         string         `bun:"phone_number" json:"phone_number,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AddMetadata sets a metadata entry, allocating the map on first use.
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// AppUser maps the record onto Smooch's appUser properties.
func (u *User) AppUser() *smooch.AppUser {
	if u == nil {
		return nil
	}
	return &smooch.AppUser{
		GivenName:  u.FirstName,
		Surname:    u.LastName,
		Email:      u.Email,
		SignedUpAt: u.CreatedAt,
	}
}

// Identity adapts u for binding.
func (u *User) Identity() smooch.KeyedIdentity {
	return NewIdentity(u)
}
