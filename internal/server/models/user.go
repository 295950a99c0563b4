// Package models contains the persistence-level data structures shared by
// repositories and services.
package models

import "time"

// User is an account record. PasswordHash and RefreshToken are internal
// columns; service-level projections clear them before a user leaves the
// service boundary.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	AvatarKey     string
	CoverImageURL string
	CoverImageKey string
	// RefreshToken is the single refresh token currently considered valid
	// for this account; nil means no active session.
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
