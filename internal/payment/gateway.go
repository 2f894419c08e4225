package payment

import "context"

// IntentRequest asks the gateway to expect a payment. Amount is in the
// gateway's minor unit (paise for INR).
type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Intent is the client-facing handle the gateway returns.
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Gateway creates remote payment intents. It is constructed at startup and
// injected wherever needed; there is no package-level client.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}
