package smooch

import (
	"context"
	"net/http"
)

// Logger receives printf style messages from binders and handles.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the caller's user record. ID returns the default identifier.
type Identity interface {
	ID() string
}

// KeyedIdentity is an Identity that can resolve alternate identifiers by key.
type KeyedIdentity interface {
	Identity
	Lookup(key string) (string, bool)
}

// HTTPClient sends outbound requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Signer produces a signed appUser token for a user identifier.
type Signer interface {
	Sign(userID string) (string, error)
}

// Payload is the result of a Transform. Synchronous values resolve
// immediately, deferred values block until they settle or ctx is done.
type Payload interface {
	Resolve(ctx context.Context) (any, error)
}

// Transform maps the bound identity to the properties sent upstream.
type Transform func(ctx context.Context, identity Identity) (Payload, error)
