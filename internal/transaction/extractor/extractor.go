// Package extractor turns transaction-alert email text into structured
// transaction candidates. Extraction is pure pattern matching over the
// subject and body: no I/O, no randomness, same output for same input.
package extractor

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"

	"github.com/shopspring/decimal"
)

// Candidate is an extracted transaction before persistence. A nil Candidate
// from Extract means "not a transaction email", which is the common case.
type Candidate struct {
	Amount        decimal.Decimal
	Currency      string
	Merchant      string
	PaymentMethod string
	CardLast4     string
	TxnTime       time.Time
	TxnType       txndomain.TxnType
	Description   string
	Confidence    float64
}

var amountPatterns = []struct {
	re       *regexp.Regexp
	currency string
}{
	{regexp.MustCompile(`(?:₹|\bRs\.?\s*|\bINR\s*)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`), "INR"},
	{regexp.MustCompile(`(?:\$|\bUSD\s*)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`), "USD"},
	{regexp.MustCompile(`(?:€|\bEUR\s*)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`), "EUR"},
	{regexp.MustCompile(`(?:£|\bGBP\s*)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`), "GBP"},
}

var (
	debitCues    = []string{"debited", "spent", "paid", "purchase", "withdrawn", "charged", "payment of"}
	creditCues   = []string{"credited", "deposited", "received", "refund", "cashback", "reversed"}
	transferCues = []string{"transferred", "transfer of", "neft", "imps", "rtgs"}

	merchantRe = regexp.MustCompile(`\b(?i:at|to|towards)\s+([A-Z][A-Za-z0-9&.'\-]*(?:\s[A-Z][A-Za-z0-9&.'\-]*){0,3})`)

	cardLast4Res = []*regexp.Regexp{
		regexp.MustCompile(`(?i)card\s+(?:ending(?:\s+in)?|no\.?)\s*[:#]?\s*(?:x+|\*+)?([0-9]{4})\b`),
		regexp.MustCompile(`(?i)\bxx+\s?([0-9]{4})\b`),
		regexp.MustCompile(`\*{2,}([0-9]{4})\b`),
	}

	// Captures that are sentence fragments, not merchant names
	merchantStopWords = map[string]bool{
		"Your": true, "You": true, "The": true, "A": true, "An": true,
		"Account": true, "Bank": true, "INR": true, "Rs": true, "My": true,
	}
)

// Extract parses subject/body text into a transaction candidate. It returns
// nil when no currency-amount pattern is found; that is the expected outcome
// for non-transaction mail, not an error.
func Extract(subject, body, sender string, receivedAt time.Time) *Candidate {
	text := subject + "\n" + body

	amount, currency, ok := findAmount(text)
	if !ok {
		return nil
	}

	lower := strings.ToLower(text)

	candidate := &Candidate{
		Amount:      amount,
		Currency:    currency,
		TxnTime:     receivedAt,
		TxnType:     inferType(lower),
		Description: buildDescription(subject, body),
		Confidence:  0.4,
	}

	if candidate.TxnType != txndomain.TypeUnknown {
		candidate.Confidence += 0.15
	}

	if merchant := findMerchant(text); merchant != "" {
		candidate.Merchant = merchant
		candidate.Confidence += 0.15
	}

	if last4 := findCardLast4(text); last4 != "" {
		candidate.CardLast4 = last4
		candidate.Confidence += 0.1
	}

	if method := inferPaymentMethod(lower, candidate.CardLast4); method != "" {
		candidate.PaymentMethod = method
		candidate.Confidence += 0.1
	}

	// Amount visible in the subject line is a strong transaction signal
	if _, _, inSubject := findAmount(subject); inSubject {
		candidate.Confidence += 0.1
	}

	if candidate.Confidence > 1.0 {
		candidate.Confidence = 1.0
	}
	return candidate
}

func findAmount(text string) (decimal.Decimal, string, bool) {
	for _, p := range amountPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		raw := strings.ReplaceAll(match[1], ",", "")
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsZero() {
			continue
		}
		return amount, p.currency, true
	}
	return decimal.Zero, "", false
}

func inferType(lower string) txndomain.TxnType {
	switch {
	case containsAny(lower, debitCues):
		return txndomain.TypeDebit
	case containsAny(lower, creditCues):
		return txndomain.TypeCredit
	case containsAny(lower, transferCues):
		return txndomain.TypeTransfer
	}
	return txndomain.TypeUnknown
}

func findMerchant(text string) string {
	matches := merchantRe.FindAllStringSubmatch(text, -1)
	for _, match := range matches {
		name := strings.TrimSpace(match[1])
		first := strings.Fields(name)[0]
		if merchantStopWords[strings.TrimRight(first, ".,")] {
			continue
		}
		return strings.TrimRight(name, ".,")
	}
	return ""
}

func findCardLast4(text string) string {
	for _, re := range cardLast4Res {
		if match := re.FindStringSubmatch(text); match != nil {
			return match[1]
		}
	}
	return ""
}

func inferPaymentMethod(lower, cardLast4 string) string {
	switch {
	case strings.Contains(lower, "credit card"):
		return "credit_card"
	case strings.Contains(lower, "debit card"):
		return "debit_card"
	case strings.Contains(lower, "upi"):
		return "upi"
	case strings.Contains(lower, "netbanking") || strings.Contains(lower, "net banking"):
		return "netbanking"
	case cardLast4 != "":
		return "card"
	}
	return ""
}

func buildDescription(subject, body string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}

	collapsed := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(collapsed) > 160 {
		// Truncate on a rune boundary; currency symbols are multi-byte
		collapsed = string([]rune(collapsed)[:160])
	}
	return collapsed
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
