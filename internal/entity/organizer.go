package entity

import "time"

type Organizer struct {
	ID               string    `json:"id" db:"id"`
	OwnerID          string    `json:"ownerId" db:"owner_id"`
	Name             string    `json:"name" db:"name"`
	BankCode         *string   `json:"bankCode" db:"bank_code"`
	AccountNumber    *string   `json:"accountNumber" db:"account_number"`
	AccountName      *string   `json:"accountName" db:"account_name"`
	RecipientCode    *string   `json:"paystackRecipientCode" db:"paystack_recipient_code"`
	AvailableBalance int64     `json:"availableBalance" db:"available_balance"`
	PendingBalance   int64     `json:"pendingBalance" db:"pending_balance"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// RecipientLinkJob asks the background consumer to create a payout recipient
// for an organizer whose inline recipient creation failed.
type RecipientLinkJob struct {
	OrganizerID   string `json:"organizerId"`
	OwnerID       string `json:"ownerId"`
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
	Attempt       int    `json:"attempt"`
}

type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	Currency string `json:"currency"`
	Active   bool   `json:"active"`
}

type ResolvedAccount struct {
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}
