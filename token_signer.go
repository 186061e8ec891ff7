package smooch

import (
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// ScopeAppUser is the only scope Smooch accepts for end user tokens.
const ScopeAppUser = "appUser"

// AppUserClaims is the claim set Smooch expects on appUser tokens.
type AppUserClaims struct {
	jwt.RegisteredClaims
	Scope  string `json:"scope"`
	UserID string `json:"userId"`
}

// HS256Signer signs appUser tokens with a shared secret.
type HS256Signer struct {
	keyID  string
	secret []byte
}

var _ Signer = (*HS256Signer)(nil)

// NewHS256Signer returns a signer for the given key id and secret. Missing
// key material is reported as a configuration error.
func NewHS256Signer(keyID, secret string) (*HS256Signer, error) {
	if keyID == "" {
		return nil, ErrMissingKeyID
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &HS256Signer{
		keyID:  keyID,
		secret: []byte(secret),
	}, nil
}

// KeyID returns the kid sent with every token.
func (s *HS256Signer) KeyID() string {
	return s.keyID
}

// Sign issues a token scoped to appUser for userID.
func (s *HS256Signer) Sign(userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingUserID
	}

	claims := &AppUserClaims{
		Scope:  ScopeAppUser,
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = s.keyID

	signedString, err := token.SignedString(s.secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign smooch token").
			WithTextCode(TextCodeSignFailed)
	}

	return signedString, nil
}
