package extractor

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"
)

var receivedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestExtractDebitAlert(t *testing.T) {
	c := Extract("", "Rs. 1,234.50 debited from your account", "alerts@hdfcbank.net", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if c.Amount.String() != "1234.5" {
		t.Errorf("amount = %s, want 1234.5", c.Amount)
	}
	if c.Currency != "INR" {
		t.Errorf("currency = %q, want INR", c.Currency)
	}
	if c.TxnType != txndomain.TypeDebit {
		t.Errorf("txn type = %q, want debit", c.TxnType)
	}
	// base 0.4 + txn type 0.15, nothing else matched
	if math.Abs(c.Confidence-0.55) > 1e-9 {
		t.Errorf("confidence = %v, want 0.55", c.Confidence)
	}
	if !c.TxnTime.Equal(receivedAt) {
		t.Errorf("txn time = %v, want %v", c.TxnTime, receivedAt)
	}
}

func TestExtractRichAlertMaxesConfidence(t *testing.T) {
	subject := "Alert: INR 2,500.00 debited"
	body := "Your Credit Card ending 1234 was charged INR 2,500.00 at Amazon Retail today."

	c := Extract(subject, body, "alerts@hdfcbank.net", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if c.Amount.String() != "2500" {
		t.Errorf("amount = %s, want 2500", c.Amount)
	}
	if c.Merchant != "Amazon Retail" {
		t.Errorf("merchant = %q, want Amazon Retail", c.Merchant)
	}
	if c.CardLast4 != "1234" {
		t.Errorf("card last4 = %q, want 1234", c.CardLast4)
	}
	if c.PaymentMethod != "credit_card" {
		t.Errorf("payment method = %q, want credit_card", c.PaymentMethod)
	}
	if math.Abs(c.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", c.Confidence)
	}
	if c.Description != subject {
		t.Errorf("description = %q, want subject line", c.Description)
	}
}

func TestExtractNoAmountReturnsNil(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		body    string
	}{
		{"newsletter", "Weekly digest", "Here is what happened this week."},
		{"otp email", "Your OTP", "Use 482910 to log in. Do not share it."},
		{"zero amount", "Balance update", "Rs. 0 is your available balance."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if c := Extract(tc.subject, tc.body, "noreply@example.com", receivedAt); c != nil {
				t.Errorf("expected nil candidate, got %+v", c)
			}
		})
	}
}

func TestExtractTxnTypes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want txndomain.TxnType
	}{
		{"credit", "INR 900.00 credited to your account", txndomain.TypeCredit},
		{"debit", "You have spent Rs. 120 on your card", txndomain.TypeDebit},
		{"transfer", "NEFT of Rs. 5,000 completed", txndomain.TypeTransfer},
		{"unknown", "Amount: Rs. 75.25 confirmed", txndomain.TypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Extract("", tc.body, "alerts@bank.com", receivedAt)
			if c == nil {
				t.Fatal("expected a candidate, got nil")
			}
			if c.TxnType != tc.want {
				t.Errorf("txn type = %q, want %q", c.TxnType, tc.want)
			}
		})
	}
}

func TestExtractCurrencies(t *testing.T) {
	cases := []struct {
		body     string
		currency string
		amount   string
	}{
		{"₹350 debited via UPI", "INR", "350"},
		{"$12.99 charged to your card", "USD", "12.99"},
		{"€20 received", "EUR", "20"},
		{"£1,050.75 paid", "GBP", "1050.75"},
	}
	for _, tc := range cases {
		t.Run(tc.currency, func(t *testing.T) {
			c := Extract("", tc.body, "alerts@bank.com", receivedAt)
			if c == nil {
				t.Fatal("expected a candidate, got nil")
			}
			if c.Currency != tc.currency {
				t.Errorf("currency = %q, want %q", c.Currency, tc.currency)
			}
			if c.Amount.String() != tc.amount {
				t.Errorf("amount = %s, want %s", c.Amount, tc.amount)
			}
		})
	}
}

func TestExtractMerchantSkipsSentenceFragments(t *testing.T) {
	// "to Your" is a sentence fragment, not a merchant name
	c := Extract("", "Rs. 500 credited to Your account balance", "alerts@bank.com", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if c.Merchant != "" {
		t.Errorf("merchant = %q, want empty", c.Merchant)
	}
}

func TestExtractUPIPayment(t *testing.T) {
	c := Extract("", "You paid Rs. 450.00 to Swiggy via UPI", "alerts@paytm.com", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if c.TxnType != txndomain.TypeDebit {
		t.Errorf("txn type = %q, want debit", c.TxnType)
	}
	if c.Merchant != "Swiggy" {
		t.Errorf("merchant = %q, want Swiggy", c.Merchant)
	}
	if c.PaymentMethod != "upi" {
		t.Errorf("payment method = %q, want upi", c.PaymentMethod)
	}
}

func TestExtractCardLast4Variants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"ending in", "Rs. 100 debited from card ending in 5678", "5678"},
		{"masked xx", "Rs. 100 debited from card XX9012", "9012"},
		{"masked stars", "Rs. 100 debited from a/c **3456", "3456"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Extract("", tc.body, "alerts@bank.com", receivedAt)
			if c == nil {
				t.Fatal("expected a candidate, got nil")
			}
			if c.CardLast4 != tc.want {
				t.Errorf("card last4 = %q, want %q", c.CardLast4, tc.want)
			}
		})
	}
}

func TestExtractDescriptionFallsBackToBody(t *testing.T) {
	body := "Rs. 99 debited.\n\n  Thank   you for shopping."
	c := Extract("", body, "alerts@bank.com", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if c.Description != "Rs. 99 debited. Thank you for shopping." {
		t.Errorf("description = %q", c.Description)
	}
}

func TestExtractDescriptionTruncatesOnRuneBoundary(t *testing.T) {
	// A long body of multi-byte currency symbols must not be cut mid-rune
	body := "₹500 debited " + strings.Repeat("₹", 200)
	c := Extract("", body, "alerts@bank.com", receivedAt)
	if c == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if !utf8.ValidString(c.Description) {
		t.Errorf("description is not valid UTF-8: %q", c.Description)
	}
	if got := utf8.RuneCountInString(c.Description); got > 160 {
		t.Errorf("description is %d runes, want at most 160", got)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	subject := "Payment alert"
	body := "Your Debit Card XX4321 was charged Rs. 1,100.00 at Big Bazaar"

	first := Extract(subject, body, "alerts@bank.com", receivedAt)
	second := Extract(subject, body, "alerts@bank.com", receivedAt)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
