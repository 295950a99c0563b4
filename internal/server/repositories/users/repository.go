package users

import (
	"context"

	"github.com/anveshm/vidtube/internal/server/models"
)

// Repository persists account records.
//
// Implementations return common.ErrorNotFound when no row matches and
// common.ErrorAlreadyExists on username/email uniqueness violations.
type Repository interface {
	// Create inserts the account and returns it with its assigned ID and
	// timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the account with the given ID.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByLogin returns the account whose username or email equals the
	// given identifier (single lookup, tries both).
	GetByLogin(ctx context.Context, identifier string) (*models.User, error)

	// GetByUsernameOrEmail returns an account matching either value. Used as
	// the duplicate pre-check before registration uploads anything.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)

	// UpdateRefreshToken unconditionally sets (or, with nil, clears) the
	// stored refresh token.
	UpdateRefreshToken(ctx context.Context, id string, token *string) error

	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals current. A concurrent rotation or a superseded token makes the
	// update match zero rows, reported as common.ErrorNotFound; this is the
	// per-record serialization point for refresh races.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
}
