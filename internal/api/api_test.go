package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tallybot/tally/internal/service"
	"github.com/tallybot/tally/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tally-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(service.NewLedgerService(store, "TWD")).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestRecordAndBalance(t *testing.T) {
	server := setupTestServer(t)

	resp := postJSON(t, server.URL+"/v1/debts", map[string]any{
		"group_id": 1, "channel_id": 500,
		"creditor_id": 10, "debtor_id": 20,
		"amount": "50.00", "actor_id": 10,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record debt status = %d, want 201", resp.StatusCode)
	}
	var entry struct {
		ID          int64  `json:"id"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
	}
	decodeBody(t, resp, &entry)
	if entry.ID == 0 || entry.AmountCents != 5000 || entry.Amount != "50.00" {
		t.Errorf("unexpected entry response: %+v", entry)
	}

	resp = postJSON(t, server.URL+"/v1/payments", map[string]any{
		"group_id": 1, "channel_id": 500,
		"creditor_id": 20, "debtor_id": 10,
		"amount": "20.00", "actor_id": 20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record payment status = %d, want 201", resp.StatusCode)
	}

	getResp, err := http.Get(server.URL + "/v1/balance?group_id=1&a=10&b=20")
	if err != nil {
		t.Fatalf("GET balance failed: %v", err)
	}
	defer getResp.Body.Close()
	var balance struct {
		NetCents int64  `json:"net_cents"`
		Net      string `json:"net"`
	}
	decodeBody(t, getResp, &balance)
	if balance.NetCents != 3000 || balance.Net != "30.00" {
		t.Errorf("balance = %+v, want net_cents 3000 / net 30.00", balance)
	}
}

func TestErrorCategories(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     map[string]any
		wantCode string
	}{
		{
			name: "invalid amount format",
			path: "/v1/debts",
			body: map[string]any{
				"group_id": 1, "creditor_id": 10, "debtor_id": 20, "amount": "abc", "actor_id": 10,
			},
			wantCode: "invalid_amount_format",
		},
		{
			name: "non-positive amount",
			path: "/v1/debts",
			body: map[string]any{
				"group_id": 1, "creditor_id": 10, "debtor_id": 20, "amount": "0.00", "actor_id": 10,
			},
			wantCode: "non_positive_amount",
		},
		{
			name: "self-referential entry",
			path: "/v1/debts",
			body: map[string]any{
				"group_id": 1, "creditor_id": 10, "debtor_id": 10, "amount": "5", "actor_id": 10,
			},
			wantCode: "self_referential",
		},
		{
			name: "split total too small for every participant",
			path: "/v1/splits",
			body: map[string]any{
				"group_id": 1, "payer_id": 10, "total": "0.03", "participant_ids": []int64{1, 2, 3, 4, 5},
			},
			wantCode: "non_positive_amount",
		},
		{
			name: "split with nobody",
			path: "/v1/splits",
			body: map[string]any{
				"group_id": 1, "payer_id": 10, "total": "9.00", "participant_ids": []int64{10},
			},
			wantCode: "no_participants",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var errResp struct {
				Code string `json:"code"`
			}
			decodeBody(t, resp, &errResp)
			if errResp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errResp.Code, tt.wantCode)
			}
		})
	}
}

func TestSplitAndUndo(t *testing.T) {
	server := setupTestServer(t)

	resp := postJSON(t, server.URL+"/v1/splits", map[string]any{
		"group_id": 1, "channel_id": 500, "payer_id": 9,
		"total": "10.00", "participant_ids": []int64{1, 2, 3},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("split status = %d, want 201", resp.StatusCode)
	}
	var splitResp struct {
		Entries []struct {
			DebtorID    int64 `json:"debtor_id"`
			AmountCents int64 `json:"amount_cents"`
		} `json:"entries"`
	}
	decodeBody(t, resp, &splitResp)
	if len(splitResp.Entries) != 3 {
		t.Fatalf("expected 3 split entries, got %d", len(splitResp.Entries))
	}
	var sum int64
	for _, e := range splitResp.Entries {
		sum += e.AmountCents
	}
	if sum != 1000 {
		t.Errorf("split sum = %d, want 1000", sum)
	}

	// Undo removes the newest split entry; a second set of undos
	// eventually reports nothing left.
	undoBody := map[string]any{"group_id": 1, "channel_id": 500, "actor_id": 9}
	for i := 0; i < 3; i++ {
		resp = postJSON(t, server.URL+"/v1/undo", undoBody)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("undo status = %d, want 200", resp.StatusCode)
		}
		var undoResp struct {
			Undone *json.RawMessage `json:"undone"`
		}
		decodeBody(t, resp, &undoResp)
		if undoResp.Undone == nil {
			t.Fatalf("undo %d returned nothing, expected an entry", i+1)
		}
	}

	resp = postJSON(t, server.URL+"/v1/undo", undoBody)
	var undoResp struct {
		Undone *json.RawMessage `json:"undone"`
	}
	decodeBody(t, resp, &undoResp)
	if undoResp.Undone != nil {
		t.Errorf("expected nothing to undo, got %s", *undoResp.Undone)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := setupTestServer(t)

	for i := 0; i < 3; i++ {
		postJSON(t, server.URL+"/v1/debts", map[string]any{
			"group_id": 1, "channel_id": 500,
			"creditor_id": 10, "debtor_id": 20,
			"amount": fmt.Sprintf("%d.00", i+1), "actor_id": 10,
		})
	}

	resp, err := http.Get(server.URL + "/v1/history?group_id=1&party_id=10&limit=2")
	if err != nil {
		t.Fatalf("GET history failed: %v", err)
	}
	defer resp.Body.Close()
	var histResp struct {
		Entries []struct {
			ID int64 `json:"id"`
		} `json:"entries"`
	}
	decodeBody(t, resp, &histResp)
	if len(histResp.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(histResp.Entries))
	}
	if histResp.Entries[0].ID <= histResp.Entries[1].ID {
		t.Errorf("history not newest first: %+v", histResp.Entries)
	}
}

func TestSelfBalanceIsZero(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/v1/balance?group_id=1&a=10&b=10")
	if err != nil {
		t.Fatalf("GET balance failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var balance struct {
		NetCents int64 `json:"net_cents"`
	}
	decodeBody(t, resp, &balance)
	if balance.NetCents != 0 {
		t.Errorf("self balance = %d, want 0", balance.NetCents)
	}
}
