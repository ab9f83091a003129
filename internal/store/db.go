package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX abstracts the database handle used by store implementations.
// It is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
}
