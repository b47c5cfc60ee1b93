// Package db wires the relational store: connection, repository
// factories, and schema migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/jbarakanov/videohost/internal/dbx"
	"github.com/jbarakanov/videohost/internal/server/repositories/users"
	"github.com/jbarakanov/videohost/internal/server/repositories/videos"
)

// RepositoryManager hands out repositories bound to a DBTX, so services
// can run the same repository code over the pool or over a transaction.
type RepositoryManager interface {
	Conn() *sql.DB
	Users(db dbx.DBTX) users.Repository
	Videos(db dbx.DBTX) videos.Repository
	RunMigrations(ctx context.Context) error
}
