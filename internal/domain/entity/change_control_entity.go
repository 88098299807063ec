package entity

import "time"

type ChangeStatus string

const (
	ChangeDraft         ChangeStatus = "Draft"
	ChangePendingReview ChangeStatus = "Pending Review"
	ChangeApproved      ChangeStatus = "Approved"
	ChangeRejected      ChangeStatus = "Rejected"
	ChangeImplemented   ChangeStatus = "Implemented"
	ChangeClosed        ChangeStatus = "Closed"
)

// ParseChangeStatus matches s exactly against the declared statuses.
func ParseChangeStatus(s string) (ChangeStatus, bool) {
	switch st := ChangeStatus(s); st {
	case ChangeDraft, ChangePendingReview, ChangeApproved, ChangeRejected, ChangeImplemented, ChangeClosed:
		return st, true
	}
	return "", false
}

// ReviewDecision is the outcome a reviewer records on a pending change.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// Target returns the status a change moves to once the decision is recorded.
func (d ReviewDecision) Target() (ChangeStatus, bool) {
	switch d {
	case DecisionApprove:
		return ChangeApproved, true
	case DecisionReject:
		return ChangeRejected, true
	}
	return "", false
}

// ChangeControl is a controlled change request awaiting or carrying a review.
type ChangeControl struct {
	ID            string
	Title         string
	Description   string
	Status        ChangeStatus
	RequestedBy   string
	ReviewedBy    string
	ReviewComment string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reviewable reports whether a review decision may be recorded now.
func (c *ChangeControl) Reviewable() bool {
	return c != nil && c.Status == ChangePendingReview
}

// ChangeReview is the audit row written alongside a review decision.
type ChangeReview struct {
	ID         string
	ChangeID   string
	ReviewerID string
	Decision   ReviewDecision
	Comment    string
	CreatedAt  time.Time
}
