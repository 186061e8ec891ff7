package smooch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ContentType is sent on every update request.
const ContentType = "application/json;charset=utf-8"

// Handle is an identity bound to a signed appUser token. It is immutable and
// safe for concurrent use.
type Handle struct {
	identity Identity
	userID   string
	token    string
	endpoint string
	client   HTTPClient
	logger   Logger
}

// HandleOption configures a Handle built with NewHandle.
type HandleOption func(*Handle)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) HandleOption {
	return func(h *Handle) {
		if endpoint != "" {
			h.endpoint = Config{Endpoint: endpoint}.endpoint()
		}
	}
}

// WithHTTPClient sets the transport used to send updates.
func WithHTTPClient(client HTTPClient) HandleOption {
	return func(h *Handle) {
		if client != nil {
			h.client = client
		}
	}
}

// WithLogger sets the handle logger.
func WithLogger(logger Logger) HandleOption {
	return func(h *Handle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithIdentity sets the record passed to transforms.
func WithIdentity(identity Identity) HandleOption {
	return func(h *Handle) {
		if identity != nil {
			h.identity = identity
		}
	}
}

// NewHandle attaches an already signed token to userID.
func NewHandle(userID, token string, opts ...HandleOption) (*Handle, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if token == "" {
		return nil, ErrMissingSecret
	}

	h := &Handle{
		identity: IDIdentity(userID),
		userID:   userID,
		token:    token,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   NewStdLogger(false),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Token returns the token signed at bind time.
func (h *Handle) Token() string {
	return h.token
}

// UserID returns the effective user id used in the token and the URL.
func (h *Handle) UserID() string {
	return h.userID
}

// URL returns the appUser resource this handle updates.
func (h *Handle) URL() string {
	return h.endpoint + "/v1/appusers/" + url.PathEscape(h.userID)
}

// Update runs transform against the bound identity, waits for its payload
// and sends it upstream once. Errors from transform, the payload and the
// transport are returned unchanged; non-2xx replies become *TransportError.
func (h *Handle) Update(ctx context.Context, transform Transform) (*Response, error) {
	if transform == nil {
		return nil, ErrNilTransform
	}

	payload, err := transform(ctx, h.identity)
	if err != nil {
		return nil, err
	}

	return h.UpdateProperties(ctx, payload)
}

// UpdateProperties sends payload without a transform step.
func (h *Handle) UpdateProperties(ctx context.Context, payload Payload) (*Response, error) {
	body, err := resolvePayload(ctx, payload)
	if err != nil {
		return nil, err
	}

	req, err := h.NewRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("smooch PUT %s payload: %s", req.URL.String(), print.MaybePrettyJSON(body))

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("smooch PUT %s failed: %v", req.URL.String(), err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		h.logger.Error("smooch PUT %s returned status %d", req.URL.String(), resp.StatusCode)
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       raw,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

// NewRequest builds the authenticated PUT for body. A nil body, including a
// typed nil map, slice or pointer, is sent as an empty JSON object.
func (h *Handle) NewRequest(ctx context.Context, body any) (*http.Request, error) {
	if isNil(body) {
		body = map[string]any{}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to encode appUser payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.URL(), bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Authorization", "Bearer "+h.token)

	return req, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
