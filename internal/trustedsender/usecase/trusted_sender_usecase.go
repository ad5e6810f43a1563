package usecase

import (
	"errors"
	"log"
	"strings"

	tsdomain "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/repository"
)

// TrustedSenderUsecase decides which senders are eligible for transaction
// extraction and manages the per-user allow list.
type TrustedSenderUsecase interface {
	// IsTrusted matches senderAddress against the user's active entries by
	// exact address or domain. Unmatched and malformed addresses return false.
	IsTrusted(userID, senderAddress string) (bool, error)
	SeedDefaults(userID string)
	List(userID string) ([]*tsdomain.TrustedSender, error)
	Create(userID, pattern string, autoApprove bool) (*tsdomain.TrustedSender, error)
	Update(userID, id string, isActive, autoApprove bool) (*tsdomain.TrustedSender, error)
	Delete(userID, id string) error
}

type trustedSenderUsecase struct {
	senderRepo repository.TrustedSenderRepository
}

// NewTrustedSenderUsecase creates a new instance of trustedSenderUsecase
func NewTrustedSenderUsecase(senderRepo repository.TrustedSenderRepository) TrustedSenderUsecase {
	return &trustedSenderUsecase{
		senderRepo: senderRepo,
	}
}

func (u *trustedSenderUsecase) IsTrusted(userID, senderAddress string) (bool, error) {
	address := strings.ToLower(strings.TrimSpace(senderAddress))

	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		// No usable domain part; fail closed without raising
		return false, nil
	}
	domain := address[at+1:]

	senders, err := u.senderRepo.ListActiveByUser(userID)
	if err != nil {
		return false, err
	}

	for _, sender := range senders {
		pattern := strings.ToLower(sender.Pattern)
		if pattern == address || pattern == domain {
			return true, nil
		}
	}
	return false, nil
}

// SeedDefaults creates the default bank/payment allow list for a new user.
// Errors are logged, not returned: a failed seed must not block registration.
func (u *trustedSenderUsecase) SeedDefaults(userID string) {
	for _, pattern := range tsdomain.DefaultPatterns {
		sender := &tsdomain.TrustedSender{
			UserID:   userID,
			Pattern:  pattern,
			IsActive: true,
		}
		if err := u.senderRepo.Create(sender); err != nil {
			log.Printf("[TrustedSender] Failed to seed %q for user %s: %v", pattern, userID, err)
		}
	}
}

func (u *trustedSenderUsecase) List(userID string) ([]*tsdomain.TrustedSender, error) {
	return u.senderRepo.ListByUser(userID)
}

func (u *trustedSenderUsecase) Create(userID, pattern string, autoApprove bool) (*tsdomain.TrustedSender, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return nil, errors.New("pattern is required")
	}

	sender := &tsdomain.TrustedSender{
		UserID:      userID,
		Pattern:     pattern,
		IsActive:    true,
		AutoApprove: autoApprove,
	}
	if err := u.senderRepo.Create(sender); err != nil {
		return nil, err
	}
	return sender, nil
}

func (u *trustedSenderUsecase) Update(userID, id string, isActive, autoApprove bool) (*tsdomain.TrustedSender, error) {
	sender, err := u.senderRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, errors.New("trusted sender not found")
	}

	sender.IsActive = isActive
	sender.AutoApprove = autoApprove
	if err := u.senderRepo.Update(sender); err != nil {
		return nil, err
	}
	return sender, nil
}

func (u *trustedSenderUsecase) Delete(userID, id string) error {
	return u.senderRepo.Delete(userID, id)
}
