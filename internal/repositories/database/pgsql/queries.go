package pgsql

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultTable is the table created by the bundled migrations.
const DefaultTable = "ledger_items"

// profileColumns lists profile attributes in scanProfile order. Index keys and
// parent id are NULL for parents.
const profileColumns = `pk, sk,
	COALESCE(gsi1pk, ''), COALESCE(gsi1sk, ''), COALESCE(gsi2pk, ''), COALESCE(gsi2sk, ''),
	user_id, role, name, email, balance, interest_rate, COALESCE(parent_id, ''),
	created_at, updated_at`

const entryColumns = `pk, sk, user_id, transaction_id, amount, entry_type, description,
	balance_after, initiated_by, entry_timestamp`

// itemQueries holds the statements of the keyed store, bound to one table name.
type itemQueries struct {
	getProfile         string
	insertProfile      string
	updateProfile      string
	conditionalBalance string
	insertEntry        string
	entriesAsc         string
	entriesDesc        string
	parentIndex        string
	roleIndex          string
	scanProfiles       string
}

func buildItemQueries(table string) itemQueries {
	if table == "" {
		table = DefaultTable
	}
	t := pgx.Identifier{table}.Sanitize()

	return itemQueries{
		getProfile: fmt.Sprintf(`SELECT %s FROM %s WHERE pk = $1 AND sk = $2`, profileColumns, t),

		insertProfile: fmt.Sprintf(`
			INSERT INTO %s (pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, user_id, role, name, email,
				balance, interest_rate, parent_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, t),

		updateProfile: fmt.Sprintf(`
			UPDATE %s
			SET name = COALESCE($3, name),
				interest_rate = COALESCE($4, interest_rate),
				updated_at = $5
			WHERE pk = $1 AND sk = $2
			RETURNING %s`, t, profileColumns),

		conditionalBalance: fmt.Sprintf(`
			UPDATE %s
			SET balance = $4, updated_at = $5
			WHERE pk = $1 AND sk = $2 AND balance = $3`, t),

		insertEntry: fmt.Sprintf(`
			INSERT INTO %s (%s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, t, entryColumns),

		entriesAsc: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE pk = $1 AND sk LIKE $2 AND ($3 = '' OR sk > $3)
			ORDER BY sk ASC
			LIMIT $4`, entryColumns, t),

		entriesDesc: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE pk = $1 AND sk LIKE $2 AND ($3 = '' OR sk < $3)
			ORDER BY sk DESC
			LIMIT $4`, entryColumns, t),

		parentIndex: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE gsi1pk = $1 AND gsi1sk > $2
			ORDER BY gsi1sk ASC
			LIMIT $3`, profileColumns, t),

		roleIndex: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE gsi2pk = $1 AND gsi2sk > $2
			ORDER BY gsi2sk ASC
			LIMIT $3`, profileColumns, t),

		scanProfiles: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE sk = $1 AND pk > $2
			ORDER BY pk ASC
			LIMIT $3`, profileColumns, t),
	}
}
