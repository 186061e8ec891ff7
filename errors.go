package smooch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeConfiguration = "smooch_configuration"
	TextCodeMissingUserID = "smooch_missing_user_id"
	TextCodeNilTransform  = "smooch_nil_transform"
	TextCodeSignFailed    = "smooch_sign_failed"
)

// ErrMissingKeyID is returned at bind time when no key id is configured.
var ErrMissingKeyID = goerrors.New("smooch key id is not configured", goerrors.CategoryBadInput).
	WithTextCode(TextCodeConfiguration)

// ErrMissingSecret is returned at bind time when no signing secret is configured.
var ErrMissingSecret = goerrors.New("smooch secret is not configured", goerrors.CategoryBadInput).
	WithTextCode(TextCodeConfiguration)

// ErrMissingUserID is returned when the identity does not yield an identifier.
var ErrMissingUserID = goerrors.New("user identifier is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingUserID).
	WithCode(goerrors.CodeBadRequest)

// ErrNilTransform is returned by Update when no transform is provided.
var ErrNilTransform = goerrors.New("transform is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeNilTransform).
	WithCode(goerrors.CodeBadRequest)

// IsConfigurationError reports whether err comes from missing key material.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingKeyID) || errors.Is(err, ErrMissingSecret) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeConfiguration
	}
	return false
}

// TransportError captures a non-2xx response from the Smooch API.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *TransportError) Error() string {
	if e == nil {
		return "smooch request failed"
	}

	scope := "smooch request"
	if e.Method != "" && e.URL != "" {
		scope = fmt.Sprintf("smooch %s %s", e.Method, e.URL)
	}

	if msg := e.description(); msg != "" {
		return fmt.Sprintf("%s failed with status %d: %s", scope, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s failed with status %d", scope, e.StatusCode)
}

func (e *TransportError) description() string {
	msg := strings.TrimSpace(string(e.Body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}

// Metadata returns the error details in the shape go-errors expects.
func (e *TransportError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{
		"status": e.StatusCode,
	}
	if e.Method != "" {
		meta["method"] = e.Method
	}
	if e.URL != "" {
		meta["url"] = e.URL
	}
	if msg := e.description(); msg != "" {
		meta["body"] = msg
	}
	return meta
}

// IsTransportError reports whether err carries a non-2xx upstream response.
func IsTransportError(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr != nil
}

// StatusCode extracts the upstream status from err, or 0 if there is none.
func StatusCode(err error) int {
	var terr *TransportError
	if errors.As(err, &terr) && terr != nil {
		return terr.StatusCode
	}
	return 0
}
