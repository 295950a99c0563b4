package repomanager

import (
	"context"
	"database/sql"

	"github.com/anveshm/vidtube/internal/dbx"
	"github.com/anveshm/vidtube/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX
// (either a plain connection or a transaction) and exposes the schema
// migration hook run at startup.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
