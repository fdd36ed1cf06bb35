package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bdb-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

const testAccount = "GA7IOL2PQSSQ2UH3HTFFD4COT2D53LPXJ4CHQQB7TY4ZHM27QWWA6BEI"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	client, err := NewClient(models.RPCConfig{
		EndpointURL:     server.URL,
		ContractAddress: "CCONTRACT",
		RequestTimeout:  5 * time.Second,
	}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	return client, server.Close
}

func TestFetchBalance_DecodesI128(t *testing.T) {
	var captured rpcRequest
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"result":{"value":{"i128":{"lo":12345000}}}}`))
	})
	defer cleanup()

	balance, err := client.FetchBalance(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}

	// 12345000 / 10^7 = 1.2345
	if !balance.Equal(decimal.RequireFromString("1.2345")) {
		t.Errorf("Expected 1.2345, got %s", balance.String())
	}
	if balance.StringFixed(2) != "1.23" {
		t.Errorf("Expected 2-decimal display 1.23, got %s", balance.StringFixed(2))
	}

	if captured.JSONRPC != "2.0" || captured.Method != "callContract" {
		t.Errorf("Unexpected request envelope: %+v", captured)
	}
	if captured.Params.ContractAddress != "CCONTRACT" || captured.Params.Method != "balance" {
		t.Errorf("Unexpected params: %+v", captured.Params)
	}
	if len(captured.Params.Args) != 1 || captured.Params.Args[0] != testAccount {
		t.Errorf("Expected args [account], got %v", captured.Params.Args)
	}
}

func TestFetchBalance_HighWord(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"value":{"i128":{"hi":1,"lo":0}}}}`))
	})
	defer cleanup()

	balance, err := client.FetchBalance(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}

	// 2^64 / 10^7
	want := decimal.RequireFromString("1844674407370.9551616")
	if !balance.Equal(want) {
		t.Errorf("Expected %s, got %s", want.String(), balance.String())
	}
}

func TestFetchBalance_RpcErrorEnvelope(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"contract not found"}}`))
	})
	defer cleanup()

	_, err := client.FetchBalance(context.Background(), testAccount)
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if rpcErr.Message != "contract not found" {
		t.Errorf("Expected server message, got %q", rpcErr.Message)
	}
}

func TestFetchBalance_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
		{"missing result", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}},
		{"null result", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":null}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, cleanup := newTestClient(t, tt.handler)
			defer cleanup()

			_, err := client.FetchBalance(context.Background(), testAccount)
			var rpcErr *Error
			if !errors.As(err, &rpcErr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
		})
	}
}

func TestFetchBalance_Unconfigured(t *testing.T) {
	client, err := NewClient(models.RPCConfig{}, &http.Client{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Configured() {
		t.Fatal("Expected unconfigured client")
	}

	_, err = client.FetchBalance(context.Background(), testAccount)
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *Error for unconfigured client, got %v", err)
	}
}

func TestSubmitTransfer_ScalesAmount(t *testing.T) {
	var captured rpcRequest
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"result":true}`))
	})
	defer cleanup()

	err := client.SubmitTransfer(context.Background(), testAccount, "GDEST", decimal.RequireFromString("30"))
	if err != nil {
		t.Fatalf("SubmitTransfer failed: %v", err)
	}

	if captured.Params.Method != "transfer" {
		t.Errorf("Expected transfer method, got %s", captured.Params.Method)
	}
	if len(captured.Params.Args) != 3 {
		t.Fatalf("Expected 3 args, got %v", captured.Params.Args)
	}
	// 30 tokens * 10^7; json decodes numbers as float64
	scaled, ok := captured.Params.Args[2].(float64)
	if !ok || scaled != 300000000 {
		t.Errorf("Expected scaled amount 300000000, got %v", captured.Params.Args[2])
	}
}

func TestSubmitTransfer_MissingResultIsError(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer cleanup()

	err := client.SubmitTransfer(context.Background(), testAccount, "GDEST", decimal.NewFromInt(1))
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *Error for missing result envelope, got %v", err)
	}
}

func TestHistoryClient_FiltersPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_embedded":{"records":[
			{"id":"1","type":"payment","from":"GAAA","to":"GBBB","amount":"100.00"},
			{"id":"2","type":"create_account","from":"GAAA","to":"GBBB","amount":"1"},
			{"id":"3","type":"payment","from":"GBBB","to":"GAAA","amount":"50.00"}
		]}}`))
	}))
	defer server.Close()

	client := NewHistoryClient(server.URL, server.Client())

	records, err := client.RecentOperations(context.Background(), testAccount, 10)
	if err != nil {
		t.Fatalf("RecentOperations failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 payment records, got %d", len(records))
	}
	if records[0].Id != "1" || records[1].Id != "3" {
		t.Errorf("Unexpected records: %+v", records)
	}
}

func TestHistoryClient_ErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHistoryClient(server.URL, server.Client())
	if _, err := client.RecentOperations(context.Background(), testAccount, 10); err == nil {
		t.Fatal("Expected error for 404 response")
	}
}
