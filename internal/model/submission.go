package model

import "time"

// SubmissionStatus is the review lifecycle state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category is the trading style a trader registers under.
type Category string

const (
	CategoryIntraday   Category = "Intraday"
	CategorySwing      Category = "Swing"
	CategoryOptions    Category = "Options"
	CategoryFnO        Category = "F&O"
	CategoryEquity     Category = "Equity"
	CategoryScalping   Category = "Scalping"
	CategoryInvestment Category = "Investment"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryIntraday,
	CategorySwing,
	CategoryOptions,
	CategoryFnO,
	CategoryEquity,
	CategoryScalping,
	CategoryInvestment,
}

// ParseCategory matches v against the known categories, case-insensitively.
func ParseCategory(v string) (Category, bool) {
	for _, c := range Categories {
		if equalFold(string(c), v) {
			return c, true
		}
	}
	return "", false
}

// Submission is a trader verification request.
// EncryptedAPIKey holds ciphertext only; the plaintext key is never part of this model.
type Submission struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	FullName          string           `json:"fullName"`
	Email             string           `json:"email"`
	City              string           `json:"city"`
	Mobile            string           `json:"mobile"`
	Category          Category         `json:"category"`
	Broker            string           `json:"broker"`
	Strategy          string           `json:"strategy"`
	ProofStoragePath  string           `json:"proofStoragePath"`
	ProofContentType  string           `json:"proofContentType"`
	ProofSize         int64            `json:"proofSize"`
	EncryptedAPIKey   *string          `json:"encryptedApiKey"`
	APIKeyEncryptedAt *time.Time       `json:"apiKeyEncryptedAt"`
	Status            SubmissionStatus `json:"status"`
	CreatedAt         time.Time        `json:"createdAt"`
	ReviewedBy        *string          `json:"reviewedBy,omitempty"`
	ReviewedAt        *time.Time       `json:"reviewedAt,omitempty"`
}
