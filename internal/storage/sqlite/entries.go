package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tallybot/tally/internal/models"
	"github.com/tallybot/tally/internal/storage"
)

const entryColumns = "id, group_id, channel_id, creditor_id, debtor_id, amount_cents, currency, kind, note, created_by, created_at"

// InsertEntry persists one entry as a single atomic write.
func (s *SQLiteStore) InsertEntry(ctx context.Context, entry *models.Entry) error {
	return s.InsertEntries(ctx, []*models.Entry{entry})
}

// InsertEntries persists all given entries in one transaction.
func (s *SQLiteStore) InsertEntries(ctx context.Context, entries []*models.Entry) error {
	for _, e := range entries {
		if e.CreditorID == e.DebtorID {
			return storage.ErrSelfDebt
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, e := range entries {
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}

		var note any
		if e.Note != "" {
			note = e.Note
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO ledger (group_id, channel_id, creditor_id, debtor_id, amount_cents, currency, kind, note, created_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.GroupID, e.ChannelID, e.CreditorID, e.DebtorID,
			e.AmountCents, e.Currency, string(e.Kind), note, e.CreatedBy, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted entry id: %w", err)
		}
		e.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteMostRecent deletes the newest entry recorded by actorID in the
// given group and channel, returning its prior field values. The select
// and delete run in one write transaction so two concurrent undos can
// never remove the same row twice or skip a row.
func (s *SQLiteStore) DeleteMostRecent(ctx context.Context, groupID, channelID, actorID int64) (*models.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM ledger
		 WHERE group_id = ? AND channel_id = ? AND created_by = ?
		 ORDER BY id DESC LIMIT 1`,
		groupID, channelID, actorID,
	)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil // nothing to undo
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find most recent entry: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM ledger WHERE id = ?", entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected != 1 {
		return nil, fmt.Errorf("expected to delete 1 entry, deleted %d", affected)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// SumDirected returns the total cents owed from debtorID to creditorID
// within the group. No matching rows yields 0.
func (s *SQLiteStore) SumDirected(ctx context.Context, groupID, creditorID, debtorID int64) (int64, error) {
	var sum int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM ledger WHERE group_id = ? AND creditor_id = ? AND debtor_id = ?",
		groupID, creditorID, debtorID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum directed amounts: %w", err)
	}
	return sum, nil
}

// EntriesBetween returns up to limit entries involving partyID, newest
// first. When otherID is nonzero only entries between the two parties
// are returned.
func (s *SQLiteStore) EntriesBetween(ctx context.Context, groupID, partyID, otherID int64, limit int) ([]models.Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if otherID != 0 {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM ledger
			 WHERE group_id = ? AND (
			     (creditor_id = ? AND debtor_id = ?) OR (creditor_id = ? AND debtor_id = ?)
			 )
			 ORDER BY id DESC LIMIT ?`,
			groupID, partyID, otherID, otherID, partyID, limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM ledger
			 WHERE group_id = ? AND (creditor_id = ? OR debtor_id = ?)
			 ORDER BY id DESC LIMIT ?`,
			groupID, partyID, partyID, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// CounterpartyNets partitions every entry involving partyID by the other
// party and computes each other party's net from partyID's perspective:
// receivable positive, payable negative. Zero nets are excluded and the
// result is ordered by descending absolute net, ties broken by lowest
// party ID.
func (s *SQLiteStore) CounterpartyNets(ctx context.Context, groupID, partyID int64, limit int) ([]storage.CounterpartyNet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT other_id,
		        SUM(CASE WHEN role = 'recv' THEN amount_cents ELSE -amount_cents END) AS net
		 FROM (
		     SELECT debtor_id AS other_id, amount_cents, 'recv' AS role
		     FROM ledger WHERE group_id = ? AND creditor_id = ?
		     UNION ALL
		     SELECT creditor_id AS other_id, amount_cents, 'pay' AS role
		     FROM ledger WHERE group_id = ? AND debtor_id = ?
		 )
		 GROUP BY other_id
		 HAVING net != 0
		 ORDER BY ABS(net) DESC, other_id ASC
		 LIMIT ?`,
		groupID, partyID, groupID, partyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query counterparty nets: %w", err)
	}
	defer rows.Close()

	var nets []storage.CounterpartyNet
	for rows.Next() {
		var n storage.CounterpartyNet
		if err := rows.Scan(&n.PartyID, &n.NetCents); err != nil {
			return nil, fmt.Errorf("failed to scan counterparty net: %w", err)
		}
		nets = append(nets, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counterparty nets: %w", err)
	}

	return nets, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.Entry, error) {
	entry := &models.Entry{}
	var (
		kind string
		note sql.NullString
	)
	err := row.Scan(&entry.ID, &entry.GroupID, &entry.ChannelID, &entry.CreditorID, &entry.DebtorID,
		&entry.AmountCents, &entry.Currency, &kind, &note, &entry.CreatedBy, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	entry.Kind = models.Kind(kind)
	if note.Valid {
		entry.Note = note.String
	}
	return entry, nil
}
