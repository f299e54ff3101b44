package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Messages from the API arrive already rendered (Subject + HTML). A job may
// instead name a Template and carry Data; the worker renders it then.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "activation" or "password_reset"
	Data     map[string]any `json:"data,omitempty"`
}
