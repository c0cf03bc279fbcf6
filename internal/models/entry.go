package models

// Kind tags the semantic intent of a ledger entry. All kinds participate
// identically in balance arithmetic; the tag only matters for display.
type Kind string

const (
	// KindDebt is an explicit "I owe" / "owed to me" record.
	KindDebt Kind = "debt"

	// KindPayment is a settlement that reduces an existing debt.
	KindPayment Kind = "payment"

	// KindSplit is a per-participant share generated by the split allocator.
	KindSplit Kind = "split"
)

// Entry is a single row of the append-only ledger. Entries are never
// updated in place; the only mutation is deletion of one row by undo.
type Entry struct {
	// ID is assigned by the store on insert, monotonically increasing.
	ID int64

	// GroupID is the isolation boundary. Balances never cross groups.
	GroupID int64

	// ChannelID is the sub-channel where the entry was recorded.
	// Used only by undo to scope "most recent" per actor per channel.
	ChannelID int64

	// CreditorID is the party who is owed money by this entry.
	CreditorID int64

	// DebtorID is the party who owes money by this entry.
	DebtorID int64

	// AmountCents is the amount in minor currency units, always > 0.
	AmountCents int64

	// Currency is the currency code stored with the row. Aggregate
	// queries assume a single currency per group in practice.
	Currency string

	// Kind distinguishes debt, payment, and split entries.
	Kind Kind

	// Note is optional free text, never interpreted.
	Note string

	// CreatedBy is the acting party who recorded the entry.
	CreatedBy int64

	// CreatedAt is the Unix timestamp when the entry was recorded.
	CreatedAt int64
}
