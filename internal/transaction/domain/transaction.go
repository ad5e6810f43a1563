package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType is the inferred direction of a transaction.
type TxnType string

const (
	TypeCredit   TxnType = "credit"
	TypeDebit    TxnType = "debit"
	TypeTransfer TxnType = "transfer"
	TypeUnknown  TxnType = "unknown"
)

// ReviewStatus is the user-facing review state of an extracted transaction.
type ReviewStatus string

const (
	StatusReview  ReviewStatus = "review"
	StatusSaved   ReviewStatus = "saved"
	StatusIgnored ReviewStatus = "ignored"
)

// Transaction is an extracted, user-reviewable transaction record.
// Confidence is a heuristic [0,1] measure of extraction completeness used
// only for ranking in the UI, never as an approval gate.
type Transaction struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	UserID        string          `json:"user_id" gorm:"index;not null"`
	RawMessageID  *string         `json:"raw_message_id,omitempty" gorm:"index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Currency      string          `json:"currency"`
	Merchant      string          `json:"merchant,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CardLast4     string          `json:"card_last4,omitempty"`
	TxnTime       time.Time       `json:"txn_time"`
	TxnType       TxnType         `json:"txn_type" gorm:"default:unknown"`
	Description   string          `json:"description" gorm:"type:text"`
	Confidence    float64         `json:"confidence"`
	Status        ReviewStatus    `json:"status" gorm:"index;default:review"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
