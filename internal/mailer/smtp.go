// Package mailer delivers plain-text report emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecipient is returned for empty or header-breaking addresses.
var ErrInvalidRecipient = errors.New("mailer: invalid recipient")

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// SMTP sends messages through a relay such as Mailpit.
type SMTP struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

// NewSMTP builds a sender.
func NewSMTP(host string, port int, from, username, password string) *SMTP {
	return &SMTP{
		Host:     host,
		Port:     port,
		From:     from,
		Username: username,
		Password: password,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// Send delivers msg. ctx is checked before dialing; net/smtp has no context support.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := strings.TrimSpace(msg.To)
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return ErrInvalidRecipient
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.send(addr, auth, s.From, []string{to}, s.compose(to, msg)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

func (s *SMTP) compose(to string, msg Message) []byte {
	var b strings.Builder
	headers := [][2]string{
		{"From", s.From},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", s.now().UTC().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=utf-8"},
		{"Content-Transfer-Encoding", "8bit"},
	}
	for _, h := range headers {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}
