package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-smooch"
	"github.com/goliatone/go-smooch/command"
	"github.com/goliatone/go-smooch/store"
	"golang.org/x/crypto/bcrypt"
)

// KeyHeader carries the relay API key when one is configured.
const KeyHeader = "X-Relay-Key"

// Runner executes appUser updates. *command.UpdateAppUserHandler satisfies it.
type Runner interface {
	Run(ctx context.Context, event command.UpdateAppUserMessage) (*smooch.Response, error)
}

// Config configures the relay routes.
type Config struct {
	// APIKeyHash is a bcrypt hash of the key callers must send in KeyHeader.
	// Empty disables the check.
	APIKeyHash string
	Logger     smooch.Logger
}

type updateRequest struct {
	Properties  map[string]any `json:"properties"`
	SyncProfile bool           `json:"sync_profile"`
	Phone       string         `json:"phone"`
	PhoneRegion string         `json:"phone_region"`
}

// Controller serves the relay endpoints.
type Controller struct {
	runner Runner
	config Config
	logger smooch.Logger
}

// NewController returns a controller that forwards updates to runner.
func NewController(runner Runner, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Controller{
		runner: runner,
		config: cfg,
		logger: logger,
	}
}

// RegisterRelayRoutes mounts GET /healthz and PUT /appusers/:id on app.
func RegisterRelayRoutes[T any](app router.Router[T], runner Runner, cfg Config) *Controller {
	ctrl := NewController(runner, cfg)

	app.Get("/healthz", ctrl.Health).SetName("relay.health")
	app.Put("/appusers/:id", ctrl.RequireKey(ctrl.Update)).SetName("relay.appuser.update")

	return ctrl
}

// Health reports liveness.
func (r *Controller) Health(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// RequireKey rejects requests without a valid KeyHeader when an API key
// hash is configured.
func (r *Controller) RequireKey(next router.HandlerFunc) router.HandlerFunc {
	return func(ctx router.Context) error {
		if r.config.APIKeyHash == "" {
			return next(ctx)
		}

		key := ctx.GetString(KeyHeader, "")
		if key == "" {
			return errorResponse(ctx, http.StatusUnauthorized, "missing relay key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(r.config.APIKeyHash), []byte(key)); err != nil {
			return errorResponse(ctx, http.StatusUnauthorized, "invalid relay key")
		}
		return next(ctx)
	}
}

// Update forwards the request body as an appUser update for :id.
func (r *Controller) Update(ctx router.Context) error {
	payload := updateRequest{}
	if len(ctx.Body()) > 0 {
		if err := ctx.Bind(&payload); err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
		}
	}

	msg := command.UpdateAppUserMessage{
		Identifier:  ctx.Param("id"),
		Properties:  payload.Properties,
		SyncProfile: payload.SyncProfile,
		Phone:       payload.Phone,
		PhoneRegion: payload.PhoneRegion,
	}

	resp, err := r.runner.Run(ctx.Context(), msg)
	if err != nil {
		return r.handleError(ctx, msg, err)
	}

	return passthrough(ctx, resp.StatusCode, resp.Body)
}

func (r *Controller) handleError(ctx router.Context, msg command.UpdateAppUserMessage, err error) error {
	var terr *smooch.TransportError
	if errors.As(err, &terr) {
		r.logger.Error("relay upstream rejected %s update: %v", msg.Identifier, err)
		return passthrough(ctx, terr.StatusCode, terr.Body)
	}

	if store.IsNotFound(err) {
		return errorResponse(ctx, http.StatusNotFound, "user not found")
	}

	if smooch.IsConfigurationError(err) {
		r.logger.Error("relay is misconfigured: %v", err)
		return errorResponse(ctx, http.StatusInternalServerError, "relay is not configured")
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return errorResponse(ctx, http.StatusBadRequest, richErr.Message)
		case goerrors.CategoryOperation:
			return errorResponse(ctx, http.StatusServiceUnavailable, richErr.Message)
		}
	}

	r.logger.Error("relay failed to update %s: %v", msg.Identifier, err)
	return errorResponse(ctx, http.StatusBadGateway, "upstream request failed")
}

// passthrough relays an upstream JSON body untouched. Bodies that are not
// JSON are wrapped in an error object.
func passthrough(ctx router.Context, status int, body []byte) error {
	if len(body) == 0 {
		return ctx.NoContent(status)
	}
	if !json.Valid(body) {
		return ctx.JSON(status, map[string]string{"error": string(body)})
	}
	return ctx.JSON(status, json.RawMessage(body))
}

func errorResponse(ctx router.Context, status int, message string) error {
	return ctx.JSON(status, map[string]string{"error": message})
}

type nopLogger struct{}

func (nopLogger) Debug(format string, args ...any) {}
func (nopLogger) Info(format string, args ...any)  {}
func (nopLogger) Error(format string, args ...any) {}
