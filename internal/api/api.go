// Package api exposes the ledger service over a thin HTTP/JSON surface.
// It translates requests into service calls and service failures into
// distinct error categories; all rendering beyond that is the client's
// job.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tallybot/tally/internal/calculator"
	"github.com/tallybot/tally/internal/models"
	"github.com/tallybot/tally/internal/money"
	"github.com/tallybot/tally/internal/service"
	"github.com/tallybot/tally/internal/storage"
)

// Handler routes ledger API requests to the service.
type Handler struct {
	svc *service.LedgerService
}

// NewHandler creates a Handler backed by the given service.
func NewHandler(svc *service.LedgerService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/debts", h.recordDebt)
	mux.HandleFunc("POST /v1/payments", h.recordPayment)
	mux.HandleFunc("POST /v1/splits", h.splitEqual)
	mux.HandleFunc("POST /v1/undo", h.undoLast)
	mux.HandleFunc("GET /v1/balance", h.netBalance)
	mux.HandleFunc("GET /v1/counterparties", h.topCounterparties)
	mux.HandleFunc("GET /v1/history", h.history)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type recordRequest struct {
	GroupID    int64  `json:"group_id"`
	ChannelID  int64  `json:"channel_id"`
	CreditorID int64  `json:"creditor_id"`
	DebtorID   int64  `json:"debtor_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	ActorID    int64  `json:"actor_id"`
}

type splitRequest struct {
	GroupID        int64   `json:"group_id"`
	ChannelID      int64   `json:"channel_id"`
	PayerID        int64   `json:"payer_id"`
	Total          string  `json:"total"`
	ParticipantIDs []int64 `json:"participant_ids"`
	Note           string  `json:"note,omitempty"`
}

type undoRequest struct {
	GroupID   int64 `json:"group_id"`
	ChannelID int64 `json:"channel_id"`
	ActorID   int64 `json:"actor_id"`
}

type entryResponse struct {
	ID          int64  `json:"id"`
	GroupID     int64  `json:"group_id"`
	ChannelID   int64  `json:"channel_id"`
	CreditorID  int64  `json:"creditor_id"`
	DebtorID    int64  `json:"debtor_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Kind        string `json:"kind"`
	Note        string `json:"note,omitempty"`
	CreatedBy   int64  `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		ChannelID:   e.ChannelID,
		CreditorID:  e.CreditorID,
		DebtorID:    e.DebtorID,
		AmountCents: e.AmountCents,
		Amount:      money.FormatCents(e.AmountCents),
		Currency:    e.Currency,
		Kind:        string(e.Kind),
		Note:        e.Note,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func (h *Handler) recordDebt(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordDebt(r.Context(), service.RecordRequest{
		GroupID: req.GroupID, ChannelID: req.ChannelID,
		CreditorID: req.CreditorID, DebtorID: req.DebtorID,
		Amount: req.Amount, Note: req.Note, ActorID: req.ActorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordPayment(r.Context(), service.RecordRequest{
		GroupID: req.GroupID, ChannelID: req.ChannelID,
		CreditorID: req.CreditorID, DebtorID: req.DebtorID,
		Amount: req.Amount, Note: req.Note, ActorID: req.ActorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) splitEqual(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entries, err := h.svc.SplitEqual(r.Context(), service.SplitRequest{
		GroupID: req.GroupID, ChannelID: req.ChannelID,
		PayerID: req.PayerID, Total: req.Total,
		ParticipantIDs: req.ParticipantIDs, Note: req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entries": out})
}

func (h *Handler) undoLast(w http.ResponseWriter, r *http.Request) {
	var req undoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.UndoLast(r.Context(), req.GroupID, req.ChannelID, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entry == nil {
		// Nothing to undo is a normal outcome, rendered distinctly.
		writeJSON(w, http.StatusOK, map[string]any{"undone": nil})
		return
	}
	undone := toEntryResponse(entry)
	writeJSON(w, http.StatusOK, map[string]any{"undone": &undone})
}

func (h *Handler) netBalance(w http.ResponseWriter, r *http.Request) {
	groupID, ok := queryID(w, r, "group_id")
	if !ok {
		return
	}
	a, ok := queryID(w, r, "a")
	if !ok {
		return
	}
	b, ok := queryID(w, r, "b")
	if !ok {
		return
	}

	// A party has no debt with itself.
	if a == b {
		writeJSON(w, http.StatusOK, map[string]any{"net_cents": 0, "net": money.FormatCents(0)})
		return
	}

	net, err := h.svc.NetBalance(r.Context(), groupID, a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	abs := net
	if abs < 0 {
		abs = -abs
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"net_cents": net,
		"net":       money.FormatCents(abs),
	})
}

func (h *Handler) topCounterparties(w http.ResponseWriter, r *http.Request) {
	groupID, ok := queryID(w, r, "group_id")
	if !ok {
		return
	}
	partyID, ok := queryID(w, r, "party_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	nets, err := h.svc.TopCounterparties(r.Context(), groupID, partyID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	type counterparty struct {
		PartyID  int64 `json:"party_id"`
		NetCents int64 `json:"net_cents"`
	}
	out := make([]counterparty, len(nets))
	for i, n := range nets {
		out[i] = counterparty{PartyID: n.PartyID, NetCents: n.NetCents}
	}
	writeJSON(w, http.StatusOK, map[string]any{"counterparties": out})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	groupID, ok := queryID(w, r, "group_id")
	if !ok {
		return
	}
	partyID, ok := queryID(w, r, "party_id")
	if !ok {
		return
	}
	otherID, _ := strconv.ParseInt(r.URL.Query().Get("other_id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.svc.History(r.Context(), groupID, partyID, otherID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entryResponse, len(entries))
	for i := range entries {
		out[i] = toEntryResponse(&entries[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError maps each failure category to a distinct code so a client
// can tell "fix your input" apart from "try again later". Anything not
// recognized is treated as a storage fault and surfaced, never
// swallowed.
func writeError(w http.ResponseWriter, err error) {
	var (
		status = http.StatusServiceUnavailable
		code   = "storage_unavailable"
	)
	switch {
	case errors.Is(err, money.ErrInvalidFormat):
		status, code = http.StatusBadRequest, "invalid_amount_format"
	case errors.Is(err, money.ErrNotPositive):
		status, code = http.StatusBadRequest, "non_positive_amount"
	case errors.Is(err, storage.ErrSelfDebt):
		status, code = http.StatusBadRequest, "self_referential"
	case errors.Is(err, calculator.ErrNoParticipants):
		status, code = http.StatusBadRequest, "no_participants"
	default:
		slog.Error("Storage operation failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "malformed_request", Error: err.Error()})
		return false
	}
	return true
}

func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "malformed_request", Error: name + " is required"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
