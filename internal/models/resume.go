package models

import "time"

type ResumeStatus string

const (
	ResumeStatusSubmitted   ResumeStatus = "SUBMITTED"
	ResumeStatusUnderReview ResumeStatus = "UNDER_REVIEW"
	ResumeStatusInterview   ResumeStatus = "INTERVIEW"
	ResumeStatusOffered     ResumeStatus = "OFFERED"
	ResumeStatusRejected    ResumeStatus = "REJECTED"
)

var validStatuses = map[ResumeStatus]struct{}{
	ResumeStatusSubmitted:   {},
	ResumeStatusUnderReview: {},
	ResumeStatusInterview:   {},
	ResumeStatusOffered:     {},
	ResumeStatusRejected:    {},
}

// IsValid reports whether s belongs to the fixed status set. The workflow
// engine only checks membership; it enforces no ordering between statuses.
func (s ResumeStatus) IsValid() bool {
	_, ok := validStatuses[s]
	return ok
}

type Resume struct {
	ID            string
	UserID        string
	UserResumeID  int
	Title         string
	Introduction  string
	Status        ResumeStatus
	AttachmentKey *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StatusLog is an append-only audit record for one status transition.
// Rows are never updated or deleted once written.
type StatusLog struct {
	ID             string
	ResumeID       string
	ReviewerID     string
	ReviewerName   string
	PreviousStatus ResumeStatus
	NewStatus      ResumeStatus
	Reason         string
	CreatedAt      time.Time
}
