package templates

import (
	"strings"
	"time"
)

// Brand carries the sender-side details shared by every email.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04 MST")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

func newData(b Brand, typ, name, email, actionURL string, opts ...Option) EmailData {
	d := EmailData{
		Name:           strings.TrimSpace(name),
		Email:          email,
		Type:           typ,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		ActionURL:      actionURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewActivationData(b Brand, name, email, link string, opts ...Option) EmailData {
	return newData(b, Activation, name, email, link, opts...)
}

func NewPasswordResetData(b Brand, name, email, link string, opts ...Option) EmailData {
	return newData(b, PasswordReset, name, email, link, opts...)
}
