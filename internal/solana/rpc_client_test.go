package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func rpcTestServer(t *testing.T, method string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != method {
			t.Errorf("expected method %s, got %s", method, req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetBalance(t *testing.T) {
	server := rpcTestServer(t, "getBalance", map[string]interface{}{
		"context": map[string]interface{}{"slot": 123},
		"value":   uint64(2_500_000_000),
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx := context.Background()

	lamports, err := client.GetBalance(ctx, "somepubkey")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}

	if lamports != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %d", lamports)
	}
}

func TestHTTPClient_GetBalance_Commitment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if len(req.Params) != 2 {
			t.Fatalf("expected 2 params, got %d", len(req.Params))
		}
		cfg, ok := req.Params[1].(map[string]interface{})
		if !ok {
			t.Fatalf("expected config map, got %T", req.Params[1])
		}
		if cfg["commitment"] != "finalized" {
			t.Errorf("expected finalized commitment, got %v", cfg["commitment"])
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"value": uint64(0)},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithCommitment(CommitmentFinalized))
	if _, err := client.GetBalance(context.Background(), "pk"); err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
}

func TestHTTPClient_GetTokenAccountsByOwner(t *testing.T) {
	server := rpcTestServer(t, "getTokenAccountsByOwner", map[string]interface{}{
		"value": []map[string]interface{}{
			{
				"pubkey": "tokenAcc1",
				"account": map[string]interface{}{
					"data": map[string]interface{}{
						"parsed": map[string]interface{}{
							"info": map[string]interface{}{
								"mint":  "mint1",
								"owner": "owner1",
							},
						},
					},
				},
			},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.GetTokenAccountsByOwner(context.Background(), "owner1", "mint1")
	if err != nil {
		t.Fatalf("GetTokenAccountsByOwner: %v", err)
	}

	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if accounts[0].Pubkey != "tokenAcc1" {
		t.Errorf("expected pubkey tokenAcc1, got %s", accounts[0].Pubkey)
	}
	if accounts[0].Mint != "mint1" {
		t.Errorf("expected mint mint1, got %s", accounts[0].Mint)
	}
}

func TestHTTPClient_GetTokenAccountsByOwner_Empty(t *testing.T) {
	server := rpcTestServer(t, "getTokenAccountsByOwner", map[string]interface{}{
		"value": []interface{}{},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.GetTokenAccountsByOwner(context.Background(), "owner1", "mint1")
	if err != nil {
		t.Fatalf("GetTokenAccountsByOwner: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("expected no accounts, got %d", len(accounts))
	}
}

func TestHTTPClient_GetTokenAccountBalance(t *testing.T) {
	server := rpcTestServer(t, "getTokenAccountBalance", map[string]interface{}{
		"value": map[string]interface{}{
			"amount":   "50000000",
			"decimals": 6,
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	amount, err := client.GetTokenAccountBalance(context.Background(), "tokenAcc1")
	if err != nil {
		t.Fatalf("GetTokenAccountBalance: %v", err)
	}

	if amount.Amount != 50_000_000 {
		t.Errorf("expected amount 50000000, got %d", amount.Amount)
	}
	if amount.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", amount.Decimals)
	}
	if ui := amount.UIAmount(); ui != 50.0 {
		t.Errorf("expected UI amount 50.0, got %f", ui)
	}
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcTestServer(t, "getLatestBlockhash", map[string]interface{}{
		"value": map[string]interface{}{
			"blockhash": "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if hash != "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N" {
		t.Errorf("unexpected blockhash %s", hash)
	}
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	rawTx := []byte{1, 2, 3, 4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "sendTransaction" {
			t.Errorf("expected method sendTransaction, got %s", req.Method)
		}

		encoded, ok := req.Params[0].(string)
		if !ok {
			t.Fatalf("expected base64 string param, got %T", req.Params[0])
		}
		if encoded != base64.StdEncoding.EncodeToString(rawTx) {
			t.Errorf("transaction bytes not forwarded intact")
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "5wHu1qwD4kFJTeu4WKzAH3eBQsQHEKnhycxBEDLi4qkq",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), rawTx)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5wHu1qwD4kFJTeu4WKzAH3eBQsQHEKnhycxBEDLi4qkq" {
		t.Errorf("unexpected signature %s", sig)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "invalid params",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if _, err := client.GetBalance(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for RPC error response")
	}
}
