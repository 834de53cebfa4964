package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

const defaultSMTPTimeout = 30 * time.Second

type SMTPEmailSender struct {
	settings SMTPSettings
	timeout  time.Duration
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPEmailSender(s SMTPSettings) *SMTPEmailSender {
	d := &net.Dialer{Timeout: defaultSMTPTimeout}
	return &SMTPEmailSender{settings: s, timeout: defaultSMTPTimeout, dial: d.DialContext}
}

// Send runs one SMTP session on a connection bounded by ctx. Without a ctx
// deadline the whole session gets the sender timeout.
func (s *SMTPEmailSender) Send(ctx context.Context, msg Message) (Result, error) {
	if strings.ContainsAny(msg.Recipient, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return Result{}, fmt.Errorf("smtp: header values must not contain line breaks")
	}
	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.settings.Host)
	body := buildMIME(s.settings.From, msg.Recipient, msg.Subject, msg.Body, id)
	addr := net.JoinHostPort(s.settings.Host, strconv.Itoa(s.settings.Port))

	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return Result{}, fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return Result{}, fmt.Errorf("smtp deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := s.deliver(conn, msg.Recipient, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("smtp send: %w", ctxErr)
		}
		return Result{}, fmt.Errorf("smtp send: %w", err)
	}
	return Result{ExternalID: id, Status: "sent", Detail: "accepted by " + s.settings.Host}, nil
}

func (s *SMTPEmailSender) deliver(conn net.Conn, recipient string, body []byte) error {
	c, err := smtp.NewClient(conn, s.settings.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.settings.Host}); err != nil {
			return err
		}
	}
	if s.settings.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.settings.Username, s.settings.Password, s.settings.Host)); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(s.settings.From); err != nil {
		return err
	}
	if err := c.Rcpt(recipient); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMIME(from, to, subject, body, messageID string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
