package mailer

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Sender delivers a fully rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// QueueNotifier hands rendered messages to the email worker through RabbitMQ.
// A nil error means the broker accepted the message, not that it was delivered.
type QueueNotifier struct {
	Pub Publisher
}

func NewQueueNotifier(pub Publisher) *QueueNotifier { return &QueueNotifier{Pub: pub} }

func (n *QueueNotifier) Send(ctx context.Context, to, subject, html string) error {
	return n.SendText(ctx, to, subject, PlainText(html), html)
}

func (n *QueueNotifier) SendText(ctx context.Context, to, subject, text, html string) error {
	if n.Pub == nil {
		return errors.New("email queue not configured")
	}
	return n.Pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: text, HTML: html})
}

// DirectNotifier sends synchronously in the request path.
type DirectNotifier struct {
	Sender Sender
}

func NewDirectNotifier(s Sender) *DirectNotifier { return &DirectNotifier{Sender: s} }

func (n *DirectNotifier) Send(ctx context.Context, to, subject, html string) error {
	return n.SendText(ctx, to, subject, PlainText(html), html)
}

func (n *DirectNotifier) SendText(ctx context.Context, to, subject, text, html string) error {
	return n.Sender.Send(ctx, to, subject, text, html)
}

// LogNotifier records that a message would have been sent. Bodies carry live
// activation and reset links, so only the envelope is logged.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(l *logrus.Logger) *LogNotifier { return &LogNotifier{Logger: l} }

func (n *LogNotifier) Send(ctx context.Context, to, subject, html string) error {
	return n.SendText(ctx, to, subject, "", html)
}

func (n *LogNotifier) SendText(_ context.Context, to, subject, text, html string) error {
	n.Logger.WithFields(logrus.Fields{
		"to":         to,
		"subject":    subject,
		"text_bytes": len(text),
		"html_bytes": len(html),
	}).Info("email sending disabled; message not sent")
	return nil
}

var (
	styleBlock = regexp.MustCompile(`(?is)<(style|head)[^>]*>.*?</(style|head)>`)
	tags       = regexp.MustCompile(`(?s)<[^>]+>`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

// PlainText gives a rough text alternative for an HTML body.
func PlainText(html string) string {
	s := styleBlock.ReplaceAllString(html, "")
	s = tags.ReplaceAllString(s, "\n")
	s = strings.NewReplacer("&amp;", "&", "&middot;", "·", "&#43;", "+", "&#34;", `"`, "&lt;", "<", "&gt;", ">").Replace(s)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
