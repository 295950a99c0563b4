// Package services contains server-side business logic. This file implements
// UserService: the registration workflow (account creation coordinated with
// external media uploads, with compensating deletes) and the session
// workflow (login, logout, refresh-token rotation).
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/anveshm/vidtube/internal/common"
	"github.com/anveshm/vidtube/internal/dbx"
	"github.com/anveshm/vidtube/internal/logging"
	"github.com/anveshm/vidtube/internal/server/auth"
	"github.com/anveshm/vidtube/internal/server/blobstore"
	"github.com/anveshm/vidtube/internal/server/config"
	"github.com/anveshm/vidtube/internal/server/models"
	"github.com/anveshm/vidtube/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// FileUpload is a pending media upload handed in by the transport layer.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// RegisterInput carries the registration form. Avatar is optional;
// CoverImage is required.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// UserService provides account and session operations:
//   - Register: create accounts with externally hosted profile media
//   - Login: verify credentials and mint a token pair
//   - Logout: invalidate the active session
//   - Refresh: rotate the refresh token and mint a new pair
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	blobs                        blobstore.Store
	logger                       logging.Logger
	accessTokenSecret            []byte
	refreshTokenSecret           []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories, media storage,
// and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		blobs:                        blobs,
		logger:                       l.With("module", "user_service"),
		accessTokenSecret:            []byte(cfg.AccessTokenSecret),
		refreshTokenSecret:           []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register runs the registration saga: duplicate check, media uploads,
// account insert, durable re-read. Any failure after an upload triggers
// compensating deletes of every blob uploaded so far, so no orphaned media
// survives a failed registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {

	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.ErrorValidation
	}
	if in.CoverImage == nil {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	// duplicate check before any upload, to avoid wasted uploads
	_, err := repo.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	var uploaded []*models.BlobRef

	var avatarRef *models.BlobRef
	if in.Avatar != nil {
		avatarRef, err = s.blobs.Upload(ctx, in.Avatar.Content, in.Avatar.Name)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, avatarRef)
	}

	coverRef, err := s.blobs.Upload(ctx, in.CoverImage.Content, in.CoverImage.Name)
	if err != nil {
		// the avatar (if any) is already in storage; delete it rather than
		// leave it orphaned
		s.cleanupUploads(ctx, uploaded)
		return nil, err
	}
	uploaded = append(uploaded, coverRef)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.cleanupUploads(ctx, uploaded)
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  string(hash),
		CoverImageURL: coverRef.URL,
		CoverImageKey: coverRef.Key,
	}
	if avatarRef != nil {
		user.AvatarURL = avatarRef.URL
		user.AvatarKey = avatarRef.Key
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "account creation failed, rolling back uploads", "error", err.Error())
		s.cleanupUploads(ctx, uploaded)
		return nil, common.ErrorInternal
	}

	// confirm durable persistence before reporting success
	persisted, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		s.logger.Error(ctx, "created account not readable, rolling back uploads", "error", err.Error())
		s.cleanupUploads(ctx, uploaded)
		return nil, common.ErrorInternal
	}

	return sanitizeUser(persisted), nil
}

// Login verifies the identifier (username or email) and password and, on
// success, persists a new refresh token — overwriting any prior session —
// and returns the account projection with a fresh token pair.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, *TokenPair, error) {

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	if err := repo.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, nil, common.ErrorInternal
	}

	return sanitizeUser(user), pair, nil
}

// Logout clears the stored refresh token unconditionally. Calling it again
// for an account with no active session is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)

	if err := repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Refresh validates the presented refresh token, rotates it, and returns a
// fresh TokenPair. The rotation is a conditional update keyed on the
// presented value: of two concurrent calls presenting the same token, one
// rotates and the other observes a mismatch. Signature or expiry failure is
// rejected before the store is touched.
func (s *UserService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {

	if presented == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := auth.GetUserIDFromRefreshToken(presented, s.refreshTokenSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return common.ErrorUnauthorized
		}

		// detects use of a superseded token: a later login or an earlier
		// refresh already replaced the stored value
		if user.RefreshToken == nil ||
			subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
			return common.ErrorUnauthorized
		}

		pair, err = s.generateTokenPair(user)
		if err != nil {
			return common.ErrorInternal
		}

		if err := repo.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return common.ErrorInternal
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(user, s.accessTokenSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, s.refreshTokenSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// cleanupUploads issues best-effort compensating deletes. Failures are
// logged, never propagated: a failed delete must not mask the error that
// triggered the rollback.
func (s *UserService) cleanupUploads(ctx context.Context, refs []*models.BlobRef) {
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref.Key); err != nil {
			s.logger.Warn(ctx, "compensating delete failed", "key", ref.Key, "error", err.Error())
		}
	}
}

// sanitizeUser projects out the credential columns before a user record
// leaves the service boundary.
func sanitizeUser(u *models.User) *models.User {
	out := *u
	out.PasswordHash = ""
	out.RefreshToken = nil
	return &out
}
