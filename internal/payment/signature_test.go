package payment

import "testing"

func TestSignatureRoundTrip(t *testing.T) {
	const secret = "test_secret_key"
	sig := Sign("order_abc123", "pay_def456", secret)

	if !Verify("order_abc123", "pay_def456", sig, secret) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	const secret = "test_secret_key"
	sig := Sign("order_abc123", "pay_def456", secret)

	cases := []struct {
		name                       string
		orderID, paymentID, sigArg string
	}{
		{"mutated order id", "order_abc124", "pay_def456", sig},
		{"mutated payment id", "order_abc123", "pay_def457", sig},
		{"mutated signature", "order_abc123", "pay_def456", sig[:len(sig)-1] + "x"},
		{"wrong secret signature", "order_abc123", "pay_def456", Sign("order_abc123", "pay_def456", "other")},
		{"empty signature", "order_abc123", "pay_def456", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.orderID, tc.paymentID, tc.sigArg, secret) {
				t.Fatal("forged signature accepted")
			}
		})
	}
}

func TestSeparatorMatters(t *testing.T) {
	const secret = "s"
	// "ab|c" and "a|bc" must not collide: the separator position is part of
	// the canonical message.
	if Sign("ab", "c", secret) == Sign("a", "bc", secret) {
		t.Fatal("canonical message ignores separator position")
	}
}
