package entity

import "time"

type ComplaintStatus string

const (
	ComplaintOpen               ComplaintStatus = "Open"
	ComplaintUnderInvestigation ComplaintStatus = "Under Investigation"
	ComplaintResolved           ComplaintStatus = "Resolved"
	ComplaintClosed             ComplaintStatus = "Closed"
)

// Severity is shared by complaints and risk records.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Complaint is a customer or internal quality complaint.
type Complaint struct {
	ID            string
	Title         string
	Description   string
	Status        ComplaintStatus
	Severity      Severity
	ReportedBy    string
	AttachmentURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuditStatus is the lifecycle of a quality audit.
type AuditStatus string

const (
	AuditPlanned    AuditStatus = "Planned"
	AuditInProgress AuditStatus = "In Progress"
	AuditCompleted  AuditStatus = "Completed"
	AuditCancelled  AuditStatus = "Cancelled"
)
