package smooch

import (
	"net/http"
	"sync"
	"time"
)

// Binder binds user identities to signed appUser handles.
type Binder struct {
	mu     sync.RWMutex
	config Config
	client HTTPClient
	logger Logger
}

// NewBinder returns a Binder for cfg. Key material is not checked until
// Bind, so a Binder can be created first and configured later.
func NewBinder(cfg Config) *Binder {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NewStdLogger(false)
	}

	return &Binder{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// Configure applies the fields present in u. Omitted fields keep their
// current value.
func (b *Binder) Configure(u ConfigUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config = b.config.Merge(u)
}

// Config returns a snapshot of the current configuration.
func (b *Binder) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Logger returns the logger handles created by b use.
func (b *Binder) Logger() Logger {
	return b.logger
}

// Bind resolves the effective user id for identity, signs a token for it and
// returns a handle ready to send updates. Missing key material fails here,
// before any request is made.
func (b *Binder) Bind(identity Identity) (*Handle, error) {
	cfg := b.Config()

	if err := cfg.Validate(); err != nil {
		b.logger.Error("smooch bind rejected configuration: %v", err)
		return nil, err
	}

	signer, err := NewHS256Signer(cfg.KeyID, cfg.Secret)
	if err != nil {
		return nil, err
	}

	return b.bind(cfg, signer, identity)
}

// BindWithSigner is Bind with a caller supplied Signer. Only the endpoint and
// user id key are read from the configuration.
func (b *Binder) BindWithSigner(signer Signer, identity Identity) (*Handle, error) {
	if signer == nil {
		return nil, ErrMissingSecret
	}
	return b.bind(b.Config(), signer, identity)
}

func (b *Binder) bind(cfg Config, signer Signer, identity Identity) (*Handle, error) {
	userID, err := ResolveUserID(identity, cfg.UserIDKey)
	if err != nil {
		return nil, err
	}

	token, err := signer.Sign(userID)
	if err != nil {
		b.logger.Error("smooch failed to sign token for user %s: %v", userID, err)
		return nil, err
	}

	b.logger.Debug("smooch bound user %s", userID)

	return &Handle{
		identity: identity,
		userID:   userID,
		token:    token,
		endpoint: cfg.endpoint(),
		client:   b.client,
		logger:   b.logger,
	}, nil
}
