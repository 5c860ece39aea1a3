package model

import "time"

// NotificationNewSubmission signals a submission waiting for review.
const NotificationNewSubmission = "NEW_SUBMISSION"

// Notification is an admin-facing alert about a submission.
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SubmissionID string    `json:"submissionId"`
	TraderName   string    `json:"traderName"`
	Role         string    `json:"role"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"createdAt"`
}
