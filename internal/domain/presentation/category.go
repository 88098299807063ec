// Package presentation maps domain status and severity values to presentation categories.
// Colors belong to the front-end; only the category identifier is decided here.
package presentation

import "github.com/oksasatya/qms-core/internal/domain/entity"

// Category is a presentation-neutral classification of a status or severity.
type Category string

const (
	CategoryNone        Category = ""
	CategoryInfo        Category = "info"
	CategoryAttention   Category = "attention"
	CategorySuccess     Category = "success"
	CategoryNeutral     Category = "neutral"
	CategoryWarning     Category = "warning"
	CategoryWarningHigh Category = "warning-high"
	CategoryDanger      Category = "danger"
)

// Kind selects the status vocabulary of an entity.
type Kind string

const (
	KindComplaint     Kind = "complaint"
	KindChangeControl Kind = "change_control"
	KindRisk          Kind = "risk"
	KindAudit         Kind = "audit"
)

// Result is what the front-end renders. The zero value means nothing to render.
type Result struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
}

func (r Result) Empty() bool { return r.Category == CategoryNone }

var complaintStatuses = map[string]Category{
	string(entity.ComplaintOpen):               CategoryInfo,
	string(entity.ComplaintUnderInvestigation): CategoryAttention,
	string(entity.ComplaintResolved):           CategorySuccess,
	string(entity.ComplaintClosed):             CategoryNeutral,
}

var changeStatuses = map[string]Category{
	string(entity.ChangeDraft):         CategoryNeutral,
	string(entity.ChangePendingReview): CategoryAttention,
	string(entity.ChangeApproved):      CategorySuccess,
	string(entity.ChangeRejected):      CategoryDanger,
	string(entity.ChangeImplemented):   CategoryInfo,
	string(entity.ChangeClosed):        CategoryNeutral,
}

var auditStatuses = map[string]Category{
	string(entity.AuditPlanned):    CategoryInfo,
	string(entity.AuditInProgress): CategoryAttention,
	string(entity.AuditCompleted):  CategorySuccess,
	string(entity.AuditCancelled):  CategoryNeutral,
}

// risk records carry a level only
var riskStatuses = map[string]Category{}

var severities = map[string]Category{
	string(entity.SeverityLow):      CategorySuccess,
	string(entity.SeverityMedium):   CategoryWarning,
	string(entity.SeverityHigh):     CategoryWarningHigh,
	string(entity.SeverityCritical): CategoryDanger,
}

func statusTable(k Kind) map[string]Category {
	switch k {
	case KindChangeControl:
		return changeStatuses
	case KindAudit:
		return auditStatuses
	case KindRisk:
		return riskStatuses
	default:
		return complaintStatuses
	}
}

// MapStatusToCategory maps a complaint status or severity.
// Status wins when both are given; an empty string counts as not given.
func MapStatusToCategory(status, severity string, showLabel bool) Result {
	return MapFor(KindComplaint, status, severity, showLabel)
}

// MapFor is MapStatusToCategory with the status vocabulary of kind.
// Unrecognized values map to neutral; unknown kinds use the complaint vocabulary.
func MapFor(kind Kind, status, severity string, showLabel bool) Result {
	var (
		value string
		table map[string]Category
	)
	switch {
	case status != "":
		value, table = status, statusTable(kind)
	case severity != "":
		value, table = severity, severities
	default:
		return Result{}
	}

	cat, ok := table[value]
	if !ok {
		cat = CategoryNeutral
	}
	res := Result{Category: cat}
	if showLabel {
		res.Label = value
	}
	return res
}

// ParseKind accepts the wire names of Kind; anything else reports false.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindComplaint, KindChangeControl, KindRisk, KindAudit:
		return Kind(s), true
	}
	return "", false
}
