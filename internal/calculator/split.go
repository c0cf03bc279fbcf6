// Package calculator holds the pure share arithmetic for equal splits.
// It never touches storage; the service layer turns shares into entries.
package calculator

import (
	"errors"
	"slices"
)

// ErrNoParticipants means a split was requested with nobody to split with
// (after removing the payer and de-duplicating).
var ErrNoParticipants = errors.New("split requires at least one participant")

// Share is one participant's allocated portion of a split total.
type Share struct {
	ParticipantID int64
	AmountCents   int64
}

// EqualShares divides totalCents among the given participants.
//
// The payer is removed from the set, duplicates are dropped, and the
// remaining participants are sorted by ascending ID. Each gets the floor
// share; the first remainder participants in ID order get one extra cent,
// so the shares always sum to exactly totalCents and no participant is
// more than one cent above another.
func EqualShares(totalCents int64, payerID int64, participantIDs []int64) ([]Share, error) {
	ids := dedupe(participantIDs, payerID)
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}

	n := int64(len(ids))
	share := totalCents / n
	remainder := totalCents - share*n

	shares := make([]Share, len(ids))
	for i, id := range ids {
		cents := share
		if int64(i) < remainder {
			cents++
		}
		shares[i] = Share{ParticipantID: id, AmountCents: cents}
	}
	return shares, nil
}

// dedupe returns the unique IDs excluding the payer, sorted ascending.
func dedupe(ids []int64, payerID int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var unique []int64
	for _, id := range ids {
		if id == payerID || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	slices.Sort(unique)
	return unique
}
