package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure the ledger table exists.
//
// The ledger is append-mostly: no UPDATE path exists anywhere in the
// code, and the only DELETE is undo removing a single row. The CHECK
// constraint backs up the application-level amount validation.
const schema = `
CREATE TABLE IF NOT EXISTS ledger (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL,
    channel_id INTEGER NOT NULL,
    creditor_id INTEGER NOT NULL,
    debtor_id INTEGER NOT NULL,
    amount_cents INTEGER NOT NULL CHECK(amount_cents > 0),
    currency TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT 'debt',
    note TEXT,
    created_by INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_group ON ledger(group_id);
CREATE INDEX IF NOT EXISTS idx_ledger_pair ON ledger(group_id, creditor_id, debtor_id);
CREATE INDEX IF NOT EXISTS idx_ledger_created_at ON ledger(created_at DESC);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
