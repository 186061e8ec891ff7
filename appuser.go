package smooch

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// PhoneProperty is the custom property key SetPhone writes to.
const PhoneProperty = "phone"

// AppUser is the typed Smooch appUser record. As a Payload it validates
// itself and resolves to its own JSON shape. ID and UserID are only
// populated on responses.
type AppUser struct {
	ID         string         `json:"_id,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	GivenName  string         `json:"givenName,omitempty"`
	Surname    string         `json:"surname,omitempty"`
	Email      string         `json:"email,omitempty"`
	SignedUpAt *time.Time     `json:"signedUpAt,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

var _ Payload = (*AppUser)(nil)

// Validate checks the fields Smooch constrains.
func (u AppUser) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.GivenName, validation.Length(0, 200)),
		validation.Field(&u.Surname, validation.Length(0, 200)),
		validation.Field(&u.Email, is.Email),
	)
}

// Resolve implements Payload.
func (u *AppUser) Resolve(ctx context.Context) (any, error) {
	if u == nil {
		return nil, nil
	}
	if err := u.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid appUser payload")
	}
	return u, nil
}

// SetProperty sets a custom property, allocating the map on first use.
func (u *AppUser) SetProperty(key string, val any) *AppUser {
	if u.Properties == nil {
		u.Properties = make(map[string]any)
	}
	u.Properties[key] = val
	return u
}

// SetPhone normalizes number to E.164 using region as the default country
// and stores it under PhoneProperty.
func (u *AppUser) SetPhone(number, region string) error {
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"number": number, "region": region})
	}
	u.SetProperty(PhoneProperty, phonenumbers.Format(parsed, phonenumbers.E164))
	return nil
}
