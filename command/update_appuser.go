package command

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-smooch"
	"github.com/goliatone/go-smooch/store"
)

// DefaultPhoneRegion is used to parse phone numbers without a country code.
const DefaultPhoneRegion = "US"

// UpdateAppUserMessage asks for a user's appUser record to be updated.
type UpdateAppUserMessage struct {
	Identifier  string         `json:"identifier"`
	Properties  map[string]any `json:"properties"`
	SyncProfile bool           `json:"sync_profile"`
	Phone       string         `json:"phone"`
	PhoneRegion string         `json:"phone_region"`
}

func (e UpdateAppUserMessage) Type() string { return "appuser.update" }

// Validate checks the message before any lookup happens.
func (e UpdateAppUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Identifier, validation.Required, validation.Length(1, 255)),
		validation.Field(&e.PhoneRegion, validation.Length(2, 2)),
	)
}

// UserFinder looks up users by id, email, username or external id.
type UserFinder interface {
	GetByIdentifier(ctx context.Context, identifier string) (*store.User, error)
}

// Binder binds an identity to a signed appUser handle.
type Binder interface {
	Bind(identity smooch.Identity) (*smooch.Handle, error)
}

type UpdateAppUserHandler struct {
	users  UserFinder
	binder Binder
}

func NewUpdateAppUserHandler(users UserFinder, binder Binder) *UpdateAppUserHandler {
	return &UpdateAppUserHandler{
		users:  users,
		binder: binder,
	}
}

func (h *UpdateAppUserHandler) Execute(ctx context.Context, event UpdateAppUserMessage) error {
	_, err := h.Run(ctx, event)
	return err
}

// Run executes event and returns the upstream response.
func (h *UpdateAppUserHandler) Run(ctx context.Context, event UpdateAppUserMessage) (*smooch.Response, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during appUser update",
		)
	default:
		return h.run(ctx, event)
	}
}

func (h *UpdateAppUserHandler) run(ctx context.Context, event UpdateAppUserMessage) (*smooch.Response, error) {
	if err := event.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid appUser update message")
	}

	user, err := h.users.GetByIdentifier(ctx, strings.TrimSpace(event.Identifier))
	if err != nil {
		return nil, err
	}

	handle, err := h.binder.Bind(user.Identity())
	if err != nil {
		return nil, err
	}

	return handle.Update(ctx, func(ctx context.Context, identity smooch.Identity) (smooch.Payload, error) {
		return buildAppUser(user, event)
	})
}

func buildAppUser(user *store.User, event UpdateAppUserMessage) (*smooch.AppUser, error) {
	appUser := &smooch.AppUser{}
	if event.SyncProfile {
		appUser = user.AppUser()
	}

	for k, v := range event.Properties {
		appUser.SetProperty(k, v)
	}

	if event.Phone != "" {
		region := strings.ToUpper(event.PhoneRegion)
		if region == "" {
			region = DefaultPhoneRegion
		}
		if err := appUser.SetPhone(event.Phone, region); err != nil {
			return nil, err
		}
	}

	return appUser, nil
}
