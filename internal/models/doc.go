// Package models defines the core domain model for the group ledger.
//
// The ledger is append-mostly: entries are created by recording actions
// or by the split allocator, and destroyed only by the undo path, which
// deletes the single most recent entry for an actor within a channel.
// There is no update path.
//
// Parties, groups, and channels are identified by the numeric IDs the
// chat platform resolves for us; this package never interprets them.
package models
