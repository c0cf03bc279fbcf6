// Package service implements the ledger operations behind the command
// surface: recording debts and payments, net balances, counterparty
// rankings, history, equal splits, and undo.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallybot/tally/internal/calculator"
	"github.com/tallybot/tally/internal/models"
	"github.com/tallybot/tally/internal/money"
	"github.com/tallybot/tally/internal/storage"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50

	// DefaultTopLimit is how many counterparties a ranking query returns
	// when the caller does not say otherwise.
	DefaultTopLimit = 8
)

// LedgerService executes ledger operations against an injected store.
// Amount strings are parsed here so invalid input never reaches storage.
type LedgerService struct {
	store    storage.Store
	currency string
}

// NewLedgerService creates a LedgerService writing entries in the given
// default currency.
func NewLedgerService(store storage.Store, currency string) *LedgerService {
	return &LedgerService{store: store, currency: currency}
}

// RecordRequest carries one debt or payment to record. Identifiers are
// already resolved by the platform layer; Amount is the raw user string.
type RecordRequest struct {
	GroupID    int64
	ChannelID  int64
	CreditorID int64
	DebtorID   int64
	Amount     string
	Note       string
	ActorID    int64
}

// SplitRequest carries one equal split to allocate and record.
type SplitRequest struct {
	GroupID        int64
	ChannelID      int64
	PayerID        int64
	Total          string
	ParticipantIDs []int64
	Note           string
}

// RecordDebt validates and inserts one kind=debt entry.
func (s *LedgerService) RecordDebt(ctx context.Context, req RecordRequest) (entry *models.Entry, err error) {
	defer func() { observe("record_debt", err) }()
	return s.record(ctx, req, models.KindDebt, req.Note)
}

// RecordPayment validates and inserts one kind=payment entry. A payment
// reduces debt through the same arithmetic as any other entry; only the
// tag differs. The note defaults to "payment".
func (s *LedgerService) RecordPayment(ctx context.Context, req RecordRequest) (entry *models.Entry, err error) {
	defer func() { observe("record_payment", err) }()
	note := req.Note
	if note == "" {
		note = "payment"
	}
	return s.record(ctx, req, models.KindPayment, note)
}

func (s *LedgerService) record(ctx context.Context, req RecordRequest, kind models.Kind, note string) (*models.Entry, error) {
	cents, err := money.ParseCents(req.Amount)
	if err != nil {
		return nil, err
	}
	if req.CreditorID == req.DebtorID {
		return nil, storage.ErrSelfDebt
	}

	entry := &models.Entry{
		GroupID:     req.GroupID,
		ChannelID:   req.ChannelID,
		CreditorID:  req.CreditorID,
		DebtorID:    req.DebtorID,
		AmountCents: cents,
		Currency:    s.currency,
		Kind:        kind,
		Note:        note,
		CreatedBy:   req.ActorID,
	}
	if err := s.store.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record %s: %w", kind, err)
	}

	slog.Info("Entry recorded",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"kind", entry.Kind,
		"amount", money.FormatCents(entry.AmountCents),
	)
	return entry, nil
}

// NetBalance returns the signed net between two parties: the directed
// sum a<-b minus the directed sum b<-a. Positive means b is a net
// debtor to a. Antisymmetric: NetBalance(g,a,b) == -NetBalance(g,b,a).
func (s *LedgerService) NetBalance(ctx context.Context, groupID, a, b int64) (net int64, err error) {
	defer func() { observe("net_balance", err) }()

	recv, err := s.store.SumDirected(ctx, groupID, a, b)
	if err != nil {
		return 0, fmt.Errorf("failed to compute net balance: %w", err)
	}
	pay, err := s.store.SumDirected(ctx, groupID, b, a)
	if err != nil {
		return 0, fmt.Errorf("failed to compute net balance: %w", err)
	}
	return recv - pay, nil
}

// TopCounterparties ranks partyID's counterparties by absolute net.
// A limit <= 0 falls back to DefaultTopLimit.
func (s *LedgerService) TopCounterparties(ctx context.Context, groupID, partyID int64, limit int) (nets []storage.CounterpartyNet, err error) {
	defer func() { observe("top_counterparties", err) }()

	if limit <= 0 {
		limit = DefaultTopLimit
	}
	nets, err = s.store.CounterpartyNets(ctx, groupID, partyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank counterparties: %w", err)
	}
	return nets, nil
}

// History returns recent entries involving partyID, newest first,
// optionally filtered to one counterparty (otherID nonzero). The limit
// is clamped to [1, 50] and defaults to 10.
func (s *LedgerService) History(ctx context.Context, groupID, partyID, otherID int64, limit int) (entries []models.Entry, err error) {
	defer func() { observe("history", err) }()

	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	entries, err = s.store.EntriesBetween(ctx, groupID, partyID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// SplitEqual allocates the total equally among the participants and
// records one kind=split entry per participant, creditor = payer. All
// entries commit in a single store transaction, so a split is never
// partially applied.
func (s *LedgerService) SplitEqual(ctx context.Context, req SplitRequest) (entries []*models.Entry, err error) {
	defer func() { observe("split_equal", err) }()

	totalCents, err := money.ParseCents(req.Total)
	if err != nil {
		return nil, err
	}

	shares, err := calculator.EqualShares(totalCents, req.PayerID, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	// Every participant must owe at least one cent; shares are sorted
	// descending by the remainder policy, so checking the last suffices.
	if shares[len(shares)-1].AmountCents <= 0 {
		return nil, money.ErrNotPositive
	}

	note := req.Note
	if note == "" {
		note = fmt.Sprintf("split %s among %d", money.FormatCents(totalCents), len(shares))
	}

	entries = make([]*models.Entry, len(shares))
	for i, share := range shares {
		entries[i] = &models.Entry{
			GroupID:     req.GroupID,
			ChannelID:   req.ChannelID,
			CreditorID:  req.PayerID,
			DebtorID:    share.ParticipantID,
			AmountCents: share.AmountCents,
			Currency:    s.currency,
			Kind:        models.KindSplit,
			Note:        note,
			CreatedBy:   req.PayerID,
		}
	}
	if err := s.store.InsertEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to record split: %w", err)
	}

	slog.Info("Split recorded",
		"group_id", req.GroupID,
		"payer_id", req.PayerID,
		"participants", len(entries),
		"total", money.FormatCents(totalCents),
	)
	return entries, nil
}

// UndoLast deletes the most recent entry recorded by actorID in the
// given group and channel and returns it. A (nil, nil) return means
// there was nothing to undo; callers render that outcome distinctly.
func (s *LedgerService) UndoLast(ctx context.Context, groupID, channelID, actorID int64) (entry *models.Entry, err error) {
	defer func() { observe("undo_last", err) }()

	entry, err = s.store.DeleteMostRecent(ctx, groupID, channelID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to undo: %w", err)
	}
	if entry != nil {
		slog.Info("Entry retracted",
			"entry_id", entry.ID,
			"group_id", entry.GroupID,
			"actor_id", actorID,
		)
	}
	return entry, nil
}
