package command

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-smooch"
	"github.com/goliatone/go-smooch/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByIdentifier(ctx context.Context, identifier string) (*store.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*store.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Debug(format string, args ...any) {}
func (nopLogger) Info(format string, args ...any)  {}
func (nopLogger) Error(format string, args ...any) {}

type capturedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newUpstream(t *testing.T, status int, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body := map[string]any{}
		assert.NoError(t, json.Unmarshal(raw, &body))
		*captured = append(*captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"appUser":{"_id":"sm-1"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestUpdateAppUserMessage(t *testing.T) {
	msg := UpdateAppUserMessage{}
	assert.Equal(t, "appuser.update", msg.Type())
	assert.Error(t, msg.Validate())

	msg.Identifier = "ada@example.com"
	assert.NoError(t, msg.Validate())

	msg.PhoneRegion = "USA"
	assert.Error(t, msg.Validate())
}

func TestUpdateAppUserHandlerRun(t *testing.T) {
	var captured []capturedRequest
	server := newUpstream(t, http.StatusOK, &captured)

	user := &store.User{
		ID:         uuid.New(),
		Email:      "ada@example.com",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		ExternalID: "crm-42",
	}

	finder := &MockUserFinder{}
	finder.On("GetByIdentifier", mock.Anything, "ada@example.com").Return(user, nil).Once()

	binder := smooch.NewBinder(smooch.Config{
		KeyID:     "app_123",
		Secret:    "secret",
		UserIDKey: store.KeyExternalID,
		Endpoint:  server.URL,
		Logger:    nopLogger{},
	})

	handler := NewUpdateAppUserHandler(finder, binder)

	resp, err := handler.Run(context.Background(), UpdateAppUserMessage{
		Identifier:  " ada@example.com ",
		SyncProfile: true,
		Properties:  map[string]any{"plan": "pro"},
		Phone:       "(650) 253-0000",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, captured, 1)
	assert.Equal(t, http.MethodPut, captured[0].method)
	assert.Equal(t, "/v1/appusers/crm-42", captured[0].path)
	assert.Contains(t, captured[0].auth, "Bearer ")
	assert.Equal(t, "Ada", captured[0].body["givenName"])
	assert.Equal(t, "Lovelace", captured[0].body["surname"])

	props, ok := captured[0].body["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pro", props["plan"])
	assert.Equal(t, "+16502530000", props["phone"])

	finder.AssertExpectations(t)
}

func TestUpdateAppUserHandlerWithoutProfile(t *testing.T) {
	var captured []capturedRequest
	server := newUpstream(t, http.StatusOK, &captured)

	user := &store.User{ID: uuid.New(), Email: "ada@example.com", FirstName: "Ada"}
	finder := &MockUserFinder{}
	finder.On("GetByIdentifier", mock.Anything, "ada@example.com").Return(user, nil).Once()

	binder := smooch.NewBinder(smooch.Config{KeyID: "app_123", Secret: "secret", Endpoint: server.URL, Logger: nopLogger{}})

	err := NewUpdateAppUserHandler(finder, binder).Execute(context.Background(), UpdateAppUserMessage{
		Identifier: "ada@example.com",
		Properties: map[string]any{"plan": "free"},
	})
	require.NoError(t, err)

	require.Len(t, captured, 1)
	assert.Equal(t, "/v1/appusers/"+user.ID.String(), captured[0].path)
	assert.NotContains(t, captured[0].body, "givenName")
}

func TestUpdateAppUserHandlerErrors(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		finder := &MockUserFinder{}
		finder.On("GetByIdentifier", mock.Anything, "missing").
			Return(nil, repository.NewRecordNotFound()).Once()

		binder := smooch.NewBinder(smooch.Config{KeyID: "app_123", Secret: "secret", Logger: nopLogger{}})

		_, err := NewUpdateAppUserHandler(finder, binder).Run(context.Background(), UpdateAppUserMessage{Identifier: "missing"})
		assert.True(t, store.IsNotFound(err))
	})

	t.Run("missing secret", func(t *testing.T) {
		var captured []capturedRequest
		server := newUpstream(t, http.StatusOK, &captured)

		finder := &MockUserFinder{}
		finder.On("GetByIdentifier", mock.Anything, "ada").
			Return(&store.User{ID: uuid.New(), Username: "ada"}, nil).Once()

		binder := smooch.NewBinder(smooch.Config{KeyID: "app_123", Endpoint: server.URL, Logger: nopLogger{}})

		_, err := NewUpdateAppUserHandler(finder, binder).Run(context.Background(), UpdateAppUserMessage{Identifier: "ada"})
		assert.True(t, smooch.IsConfigurationError(err))
		assert.Empty(t, captured)
	})

	t.Run("invalid phone", func(t *testing.T) {
		var captured []capturedRequest
		server := newUpstream(t, http.StatusOK, &captured)

		finder := &MockUserFinder{}
		finder.On("GetByIdentifier", mock.Anything, "ada").
			Return(&store.User{ID: uuid.New(), Username: "ada"}, nil).Once()

		binder := smooch.NewBinder(smooch.Config{KeyID: "app_123", Secret: "secret", Endpoint: server.URL, Logger: nopLogger{}})

		_, err := NewUpdateAppUserHandler(finder, binder).Run(context.Background(), UpdateAppUserMessage{
			Identifier: "ada",
			Phone:      "12",
		})
		assert.Error(t, err)
		assert.Empty(t, captured)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewUpdateAppUserHandler(&MockUserFinder{}, smooch.NewBinder(smooch.Config{})).
			Run(ctx, UpdateAppUserMessage{Identifier: "ada"})
		assert.Error(t, err)
	})
}

func TestUpdateAppUserHandlerExecuteReportsRunErrors(t *testing.T) {
	var captured []capturedRequest
	server := newUpstream(t, http.StatusUnauthorized, &captured)

	user := &store.User{ID: uuid.New(), Email: "ada@example.com", ExternalID: "crm-42"}
	finder := &MockUserFinder{}
	finder.On("GetByIdentifier", mock.Anything, "ada@example.com").Return(user, nil).Twice()

	binder := smooch.NewBinder(smooch.Config{
		KeyID:     "app_123",
		Secret:    "secret",
		UserIDKey: store.KeyExternalID,
		Endpoint:  server.URL,
		Logger:    nopLogger{},
	})
	handler := NewUpdateAppUserHandler(finder, binder)
	msg := UpdateAppUserMessage{Identifier: "ada@example.com"}

	err := handler.Execute(context.Background(), msg)
	assert.Equal(t, http.StatusUnauthorized, smooch.StatusCode(err))

	resp, err := handler.Run(context.Background(), msg)
	assert.Nil(t, resp)
	assert.True(t, smooch.IsTransportError(err))

	require.Len(t, captured, 2)
	assert.Equal(t, "/v1/appusers/crm-42", captured[0].path)
	finder.AssertExpectations(t)
}
