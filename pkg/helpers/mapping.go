package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/qms-core/pkg/mailer"
	mailtpl "github.com/oksasatya/qms-core/pkg/mailer/templates"
)

// FallbackSubject is used for raw jobs published without a subject.
func FallbackSubject(data map[string]any) string {
	switch strings.ToLower(fmt.Sprintf("%v", data["Type"])) {
	case mailtpl.ChangeReview:
		return "Your change control was reviewed"
	default:
		return "QMS notification"
	}
}

// EnsureRecipient makes sure templates can address the recipient.
func EnsureRecipient(job *mailer.NotificationJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
	if job.Template != "" {
		if v, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", v) == "" {
			job.Data["Type"] = job.Template
		}
	}
}
