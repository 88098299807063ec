package mailer

// NotificationJob is the JSON payload put on the RabbitMQ queue for sending a notification email.
// Either Template (+Data) or Subject with Text/HTML is set.
type NotificationJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "change_review"
	Data     map[string]any `json:"data,omitempty"`
}
