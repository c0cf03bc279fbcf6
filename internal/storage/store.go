// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/tallybot/tally/internal/models"
)

// ErrSelfDebt means an entry's creditor and debtor are the same party.
// The write is rejected before it reaches the database.
var ErrSelfDebt = errors.New("creditor and debtor must be different parties")

// CounterpartyNet is one other party's net position relative to the
// queried party: positive means they owe the queried party, negative
// means the queried party owes them.
type CounterpartyNet struct {
	PartyID  int64
	NetCents int64
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// InsertEntry persists one entry as a single atomic write and
	// populates its ID and CreatedAt. Returns ErrSelfDebt when the
	// entry's creditor equals its debtor.
	InsertEntry(ctx context.Context, entry *models.Entry) error

	// InsertEntries persists all given entries in one transaction:
	// either every entry is durably visible or none are. Used by the
	// split allocator so a split can never be partially applied.
	InsertEntries(ctx context.Context, entries []*models.Entry) error

	// DeleteMostRecent deletes the entry with the greatest ID recorded
	// by actorID in the given group and channel, returning its prior
	// field values. A (nil, nil) return means no entry matched; that is
	// a normal outcome, not an error.
	DeleteMostRecent(ctx context.Context, groupID, channelID, actorID int64) (*models.Entry, error)

	// SumDirected returns the total cents owed from debtorID to
	// creditorID within the group. No matching rows yields 0, not an
	// error.
	SumDirected(ctx context.Context, groupID, creditorID, debtorID int64) (int64, error)

	// EntriesBetween returns up to limit entries involving partyID,
	// newest first. When otherID is nonzero only entries between the
	// two parties (in either direction) are returned.
	EntriesBetween(ctx context.Context, groupID, partyID, otherID int64, limit int) ([]models.Entry, error)

	// CounterpartyNets returns up to limit counterparties of partyID
	// ordered by descending absolute net, ties broken by lowest party
	// ID. Counterparties whose net is exactly zero are excluded.
	CounterpartyNets(ctx context.Context, groupID, partyID int64, limit int) ([]CounterpartyNet, error)

	// Close releases any resources held by the store.
	Close() error
}
