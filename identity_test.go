package smooch_test

import (
	"testing"

	"github.com/goliatone/go-smooch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements smooch.KeyedIdentity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Lookup(key string) (string, bool) {
	args := m.Called(key)
	return args.String(0), args.Bool(1)
}

func TestResolveUserID(t *testing.T) {
	record := smooch.MapIdentity{Record: map[string]any{
		"id":          "default-1",
		"external_id": "crm-42",
		"age":         42,
	}}

	tests := []struct {
		name     string
		identity smooch.Identity
		key      string
		expected string
		err      error
	}{
		{name: "no key uses default id", identity: record, key: "", expected: "default-1"},
		{name: "key present uses lookup", identity: record, key: "external_id", expected: "crm-42"},
		{name: "key missing falls back", identity: record, key: "missing", expected: "default-1"},
		{name: "non string value falls back", identity: record, key: "age", expected: "default-1"},
		{name: "plain identity ignores key", identity: smooch.IDIdentity("plain"), key: "external_id", expected: "plain"},
		{name: "nil identity", identity: nil, err: smooch.ErrMissingUserID},
		{name: "empty id", identity: smooch.IDIdentity(""), err: smooch.ErrMissingUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := smooch.ResolveUserID(tt.identity, tt.key)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestResolveUserIDDoesNotLookupWithoutKey(t *testing.T) {
	identity := &MockIdentity{}
	identity.On("ID").Return("user-123")

	id, err := smooch.ResolveUserID(identity, "")
	assert.NoError(t, err)
	assert.Equal(t, "user-123", id)

	identity.AssertNotCalled(t, "Lookup", mock.Anything)
	identity.AssertExpectations(t)
}

func TestMapIdentityCustomIDField(t *testing.T) {
	identity := smooch.MapIdentity{
		Record:  map[string]any{"objectId": "parse-1"},
		IDField: "objectId",
	}
	assert.Equal(t, "parse-1", identity.ID())

	_, found := smooch.MapIdentity{}.Lookup("objectId")
	assert.False(t, found)
}
