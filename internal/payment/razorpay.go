package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RazorpayClient talks to the Razorpay Orders API over HTTP basic auth.
type RazorpayClient struct {
	HTTP    *http.Client
	BaseURL string
	keyID   string
	secret  string
}

func NewRazorpayClient(baseURL, keyID, secret string) *RazorpayClient {
	return &RazorpayClient{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
	}
}

func (c *RazorpayClient) CreateIntent(ctx context.Context, reqIn IntentRequest) (*Intent, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   reqIn.AmountMinor,
		"currency": reqIn.Currency,
		"receipt":  reqIn.Receipt,
		"notes":    reqIn.Notes,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: %s", res.Status)
	}
	var in Intent
	if err := json.NewDecoder(res.Body).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &in, nil
}
