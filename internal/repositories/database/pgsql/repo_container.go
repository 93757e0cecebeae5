package pgsql

import (
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds the PostgreSQL-backed repositories over the given table.
func NewRepositoryProvider(dbPool *pgxpool.Pool, table string) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ItemStore: newPgxItemStore(dbPool, table),
	}
}
