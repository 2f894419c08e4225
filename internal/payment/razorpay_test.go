package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRazorpayCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Error("missing or wrong basic auth")
		}
		var body struct {
			Amount   int64             `json:"amount"`
			Currency string            `json:"currency"`
			Receipt  string            `json:"receipt"`
			Notes    map[string]string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Amount != 31000 || body.Currency != "INR" {
			t.Errorf("got amount=%d currency=%s", body.Amount, body.Currency)
		}
		if body.Notes["orderId"] != "ord-1" {
			t.Errorf("notes not forwarded: %v", body.Notes)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Intent{ID: "order_rzp1", Amount: body.Amount, Currency: body.Currency})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "key_id", "key_secret")
	in, err := c.CreateIntent(context.Background(), IntentRequest{
		AmountMinor: 31000,
		Currency:    "INR",
		Receipt:     "rcpt_ord-1",
		Notes:       map[string]string{"orderId": "ord-1", "userId": "u1"},
	})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if in.ID != "order_rzp1" || in.Amount != 31000 || in.Currency != "INR" {
		t.Fatalf("unexpected intent: %+v", in)
	}
}

func TestRazorpayCreateIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "bad", "creds")
	if _, err := c.CreateIntent(context.Background(), IntentRequest{AmountMinor: 100, Currency: "INR"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
