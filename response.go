package smooch

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Response is a successful reply from the Smooch API.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return goerrors.New("empty smooch response", goerrors.CategoryInternal)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode smooch response")
	}
	return nil
}

type appUserEnvelope struct {
	AppUser *AppUser `json:"appUser"`
}

// AppUser decodes the {"appUser": {...}} envelope returned by updates.
func (r *Response) AppUser() (*AppUser, error) {
	var envelope appUserEnvelope
	if err := r.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.AppUser == nil {
		return nil, goerrors.New("smooch response has no appUser", goerrors.CategoryInternal)
	}
	return envelope.AppUser, nil
}
