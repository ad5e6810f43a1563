package usecase

import (
	"errors"
	"fmt"
	"log"
	"time"

	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	msgrepo "github.com/DSaraf-Work/budget-manager-backend/internal/message/repository"
	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/transaction/extractor"
	"github.com/DSaraf-Work/budget-manager-backend/internal/transaction/repository"

	"github.com/shopspring/decimal"
)

// ProcessResult aggregates one processing pass over the pending backlog
type ProcessResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// CreateRequest carries a manually entered transaction. No source message
// backs it, so it skips review and lands saved.
type CreateRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Merchant      string          `json:"merchant"`
	PaymentMethod string          `json:"payment_method"`
	TxnType       string          `json:"txn_type"`
	TxnTime       time.Time       `json:"txn_time"`
	Description   string          `json:"description"`
}

// EditRequest carries user edits to an extracted transaction
type EditRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Currency      *string          `json:"currency"`
	Merchant      *string          `json:"merchant"`
	PaymentMethod *string          `json:"payment_method"`
	TxnType       *string          `json:"txn_type"`
	Description   *string          `json:"description"`
}

// TransactionUsecase turns stored messages into transaction records and
// handles user review actions.
type TransactionUsecase interface {
	// ProcessPendingMessages drains the user's pending backlog oldest first.
	// Every message ends in exactly one terminal status; a single message's
	// failure never stops the pass.
	ProcessPendingMessages(userID string) (*ProcessResult, error)
	Create(userID string, req *CreateRequest) (*txndomain.Transaction, error)
	List(userID string, status txndomain.ReviewStatus, limit int) ([]*txndomain.Transaction, error)
	Approve(userID, id string) (*txndomain.Transaction, error)
	Reject(userID, id string) (*txndomain.Transaction, error)
	Edit(userID, id string, req *EditRequest) (*txndomain.Transaction, error)
}

type transactionUsecase struct {
	txnRepo repository.TransactionRepository
	msgRepo msgrepo.RawMessageRepository
}

// NewTransactionUsecase creates a new instance of transactionUsecase
func NewTransactionUsecase(txnRepo repository.TransactionRepository, msgRepo msgrepo.RawMessageRepository) TransactionUsecase {
	return &transactionUsecase{
		txnRepo: txnRepo,
		msgRepo: msgRepo,
	}
}

func (u *transactionUsecase) ProcessPendingMessages(userID string) (*ProcessResult, error) {
	msgs, err := u.msgRepo.ListPendingByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}

	result := &ProcessResult{}
	for _, msg := range msgs {
		result.Processed++

		candidate := extractor.Extract(msg.Subject, msg.Body, msg.FromAddress, msg.ReceivedAt)
		if candidate == nil {
			// Not a transaction email; a frequent, silent outcome
			u.markStatus(msg, msgdomain.StatusSkipped, "", result)
			result.Skipped++
			continue
		}

		rawMessageID := msg.ID
		txn := &txndomain.Transaction{
			UserID:        userID,
			RawMessageID:  &rawMessageID,
			Amount:        candidate.Amount,
			Currency:      candidate.Currency,
			Merchant:      candidate.Merchant,
			PaymentMethod: candidate.PaymentMethod,
			CardLast4:     candidate.CardLast4,
			TxnTime:       candidate.TxnTime,
			TxnType:       candidate.TxnType,
			Description:   candidate.Description,
			Confidence:    candidate.Confidence,
			Status:        txndomain.StatusReview,
		}

		if err := u.txnRepo.Create(txn); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("message %s: %v", msg.MessageID, err))
			u.markStatus(msg, msgdomain.StatusFailed, err.Error(), result)
			continue
		}

		result.Created++
		u.markStatus(msg, msgdomain.StatusProcessed, "", result)
	}

	if result.Failed > 0 {
		log.Printf("[Processor] Processed %d messages for user %s: %d created, %d skipped, %d failed",
			result.Processed, userID, result.Created, result.Skipped, result.Failed)
	}
	return result, nil
}

// markStatus records the terminal status; a status-write failure is itself
// isolated to the message and surfaced in the result errors.
func (u *transactionUsecase) markStatus(msg *msgdomain.RawMessage, status msgdomain.MessageStatus, errMsg string, result *ProcessResult) {
	if err := u.msgRepo.UpdateStatus(msg.ID, status, errMsg); err != nil {
		log.Printf("[Processor] Failed to mark message %s as %s: %v", msg.ID, status, err)
		result.Errors = append(result.Errors, fmt.Sprintf("message %s status update: %v", msg.MessageID, err))
	}
}

func (u *transactionUsecase) Create(userID string, req *CreateRequest) (*txndomain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	txnTime := req.TxnTime
	if txnTime.IsZero() {
		txnTime = time.Now()
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	txnType := txndomain.TxnType(req.TxnType)
	if txnType == "" {
		txnType = txndomain.TypeUnknown
	}

	txn := &txndomain.Transaction{
		UserID:        userID,
		Amount:        req.Amount,
		Currency:      currency,
		Merchant:      req.Merchant,
		PaymentMethod: req.PaymentMethod,
		TxnTime:       txnTime,
		TxnType:       txnType,
		Description:   req.Description,
		Confidence:    1.0,
		Status:        txndomain.StatusSaved,
	}
	if err := u.txnRepo.Create(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (u *transactionUsecase) List(userID string, status txndomain.ReviewStatus, limit int) ([]*txndomain.Transaction, error) {
	return u.txnRepo.ListByUser(userID, status, limit)
}

func (u *transactionUsecase) Approve(userID, id string) (*txndomain.Transaction, error) {
	return u.setReviewStatus(userID, id, txndomain.StatusSaved)
}

func (u *transactionUsecase) Reject(userID, id string) (*txndomain.Transaction, error) {
	return u.setReviewStatus(userID, id, txndomain.StatusIgnored)
}

func (u *transactionUsecase) setReviewStatus(userID, id string, status txndomain.ReviewStatus) (*txndomain.Transaction, error) {
	txn, err := u.txnRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errors.New("transaction not found")
	}

	txn.Status = status
	if err := u.txnRepo.Update(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (u *transactionUsecase) Edit(userID, id string, req *EditRequest) (*txndomain.Transaction, error) {
	txn, err := u.txnRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errors.New("transaction not found")
	}

	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Currency != nil {
		txn.Currency = *req.Currency
	}
	if req.Merchant != nil {
		txn.Merchant = *req.Merchant
	}
	if req.PaymentMethod != nil {
		txn.PaymentMethod = *req.PaymentMethod
	}
	if req.TxnType != nil {
		txn.TxnType = txndomain.TxnType(*req.TxnType)
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}

	if err := u.txnRepo.Update(txn); err != nil {
		return nil, err
	}
	return txn, nil
}
