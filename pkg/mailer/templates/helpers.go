package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/qms-core/config"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/presentation"
)

// Option pattern
type Option func(*NotificationData)

func WithComment(comment string) Option {
	return func(d *NotificationData) { d.Comment = strings.TrimSpace(comment) }
}

func WithReviewedAt(t time.Time) Option {
	return func(d *NotificationData) {
		utc := t.UTC()
		d.ReviewedAt = utc
		d.ReviewedAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewBaseData fills the company fields from config, then applies opts.
func NewBaseData(cfg *config.Config, typ, name, recipient string, opts ...Option) NotificationData {
	d := NotificationData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewChangeReviewData builds the data of the change_review template sent to the requester.
func NewChangeReviewData(cfg *config.Config, change *entity.ChangeControl, decision entity.ReviewDecision, requester, reviewer *entity.Actor, opts ...Option) map[string]any {
	d := NewBaseData(cfg, ChangeReview, requester.Name, requester.Email, opts...)
	d.ChangeID = change.ID
	d.ChangeTitle = change.Title
	d.ChangeURL = strings.TrimRight(cfg.ChangeControlURL, "/") + "/" + change.ID
	d.Decision = string(decision)
	d.Status = string(change.Status)
	d.StatusCategory = string(presentation.MapFor(presentation.KindChangeControl, string(change.Status), "", false).Category)
	if reviewer != nil {
		d.ReviewerName = reviewer.Name
	}
	return ToMap(d)
}
