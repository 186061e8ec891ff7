package smooch

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultEndpoint is the Smooch REST API base URL.
const DefaultEndpoint = "https://api.smooch.io"

// Config holds the key material and transport used to reach Smooch.
type Config struct {
	// KeyID is sent as the kid header of every signed token.
	KeyID string
	// Secret signs tokens with HMAC-SHA256.
	Secret string
	// UserIDKey, when set, selects an alternate identifier on KeyedIdentity
	// records instead of their default ID.
	UserIDKey string
	// Endpoint overrides DefaultEndpoint.
	Endpoint string

	HTTPClient HTTPClient
	Logger     Logger
}

// ConfigUpdate is a partial Config. Nil fields keep their previous value.
type ConfigUpdate struct {
	KeyID     *string
	Secret    *string
	UserIDKey *string
	Endpoint  *string
}

// String returns a pointer to s, for building a ConfigUpdate.
func String(s string) *string {
	return &s
}

// Merge returns a copy of c with every field present in u applied.
func (c Config) Merge(u ConfigUpdate) Config {
	if u.KeyID != nil {
		c.KeyID = *u.KeyID
	}
	if u.Secret != nil {
		c.Secret = *u.Secret
	}
	if u.UserIDKey != nil {
		c.UserIDKey = *u.UserIDKey
	}
	if u.Endpoint != nil {
		c.Endpoint = *u.Endpoint
	}
	return c
}

// Validate checks that the key material needed for signing is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.KeyID) == "" {
		return ErrMissingKeyID
	}
	if c.Secret == "" {
		return ErrMissingSecret
	}

	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.By(validEndpoint)),
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid smooch configuration").
			WithTextCode(TextCodeConfiguration)
	}

	return nil
}

func (c Config) endpoint() string {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return DefaultEndpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

func validEndpoint(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return errors.New("endpoint missing scheme (http/https)")
	}
	if u.Host == "" {
		return errors.New("endpoint missing host")
	}
	return nil
}
