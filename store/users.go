package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the Bun backed user directory.
type Users struct {
	db bun.IDB
}

// NewUsers returns a directory over db.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

// CreateSchema creates the users table if it does not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// NewUserID derives a stable ID from email, or a random one when email is
// empty.
func NewUserID(email string) uuid.UUID {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != "" {
		if id, err := hashid.NewUUID(email); err == nil {
			return id
		}
	}
	return uuid.New()
}

// Create inserts user, assigning an ID when it has none.
func (s *Users) Create(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, goerrors.New("user is required", goerrors.CategoryBadInput)
	}
	if strings.TrimSpace(user.Email) == "" && strings.TrimSpace(user.Username) == "" {
		return nil, goerrors.New("user requires an email or username", goerrors.CategoryBadInput)
	}
	if user.Username == "" {
		user.Username = user.Email
	}
	if user.ID == uuid.Nil {
		user.ID = NewUserID(user.Email)
	}

	if _, err := s.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}
	return user, nil
}

// GetByID returns the user with the given ID.
func (s *Users) GetByID(ctx context.Context, id string) (*User, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id,
		})
	}

	user := &User{}
	err = s.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", parsed).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, map[string]any{"id": id})
	}
	return user, nil
}

// GetByIdentifier matches identifier against id, email, username and
// external_id.
func (s *Users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, repository.NewRecordNotFound()
	}

	if _, err := uuid.Parse(identifier); err == nil {
		user, err := s.GetByID(ctx, identifier)
		if err == nil || !IsNotFound(err) {
			return user, err
		}
	}

	user := &User{}
	err := s.db.NewSelect().
		Model(user).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("?TableAlias.email = ?", identifier).
				WhereOr("?TableAlias.username = ?", identifier).
				WhereOr("?TableAlias.external_id = ?", identifier)
		}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, map[string]any{"identifier": identifier})
	}
	return user, nil
}

// Update persists user and bumps updated_at.
func (s *Users) Update(ctx context.Context, user *User) (*User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, goerrors.New("user with ID is required", goerrors.CategoryBadInput)
	}

	now := time.Now()
	user.UpdatedAt = &now

	res, err := s.db.NewUpdate().
		Model(user).
		WherePK().
		ExcludeColumn("created_at").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": user.ID.String(),
		})
	}
	return user, nil
}

// IsNotFound reports whether err means no matching user exists.
func IsNotFound(err error) bool {
	return err != nil && (repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows))
}

func notFoundOr(err error, meta map[string]any) error {
	if IsNotFound(err) {
		return repository.NewRecordNotFound().WithMetadata(meta)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "could not query users")
}
