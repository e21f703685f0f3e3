package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// EmailChannel delivers notifications over SMTP.
type EmailChannel struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailChannel creates an SMTP-backed channel.
func NewEmailChannel(host string, port int, user, pass, from string) *EmailChannel {
	return &EmailChannel{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (c *EmailChannel) Name() string { return domain.ChannelEmail }

func (c *EmailChannel) Send(_ context.Context, p *domain.Profile, msg Message) error {
	if p.Email == "" {
		return errors.New("profile has no email address")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", p.Email)
	m.SetHeader("Subject", msg.Title)
	body := strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>")
	m.SetBody("text/html", fmt.Sprintf(
		"<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\"><h2>%s</h2><p>%s</p></div>",
		html.EscapeString(msg.Title), body))
	return c.dialer.DialAndSend(m)
}
