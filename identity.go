package smooch

import "strings"

// ResolveUserID returns the identifier used for both the token and the URL.
// When key is set and identity can resolve it, the keyed value wins;
// otherwise the default ID is used.
func ResolveUserID(identity Identity, key string) (string, error) {
	if identity == nil {
		return "", ErrMissingUserID
	}

	if key != "" {
		if keyed, ok := identity.(KeyedIdentity); ok {
			if id, found := keyed.Lookup(key); found && id != "" {
				return id, nil
			}
		}
	}

	id := identity.ID()
	if strings.TrimSpace(id) == "" {
		return "", ErrMissingUserID
	}
	return id, nil
}

// IDIdentity is an Identity that only carries a default identifier.
type IDIdentity string

// ID implements Identity.
func (i IDIdentity) ID() string {
	return string(i)
}

// MapIdentity adapts a generic record into a KeyedIdentity. The default
// identifier is read from IDField, "id" when empty.
type MapIdentity struct {
	Record  map[string]any
	IDField string
}

// ID implements Identity.
func (m MapIdentity) ID() string {
	field := m.IDField
	if field == "" {
		field = "id"
	}
	id, _ := m.Lookup(field)
	return id
}

// Lookup implements KeyedIdentity. Only string values are returned.
func (m MapIdentity) Lookup(key string) (string, bool) {
	if m.Record == nil {
		return "", false
	}
	v, ok := m.Record[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
