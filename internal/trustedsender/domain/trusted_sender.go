package domain

import "time"

// TrustedSender marks an email source as eligible for transaction extraction.
// Pattern is either an exact address ("alerts@hdfcbank.net") or a bare domain
// ("icicibank.com"). Senders with no matching active entry are never processed.
type TrustedSender struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_pattern"`
	Pattern     string    `json:"pattern" gorm:"not null;uniqueIndex:idx_user_pattern"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	AutoApprove bool      `json:"auto_approve" gorm:"default:false"` // advisory only
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultPatterns are seeded for every new user at registration.
var DefaultPatterns = []string{
	"alerts@hdfcbank.net",
	"icicibank.com",
	"axisbank.com",
	"kotak.com",
	"sbi.co.in",
	"paytm.com",
	"phonepe.com",
	"gpay-noreply@google.com",
	"amazonpay.in",
}
