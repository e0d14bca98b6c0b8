package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

const defaultPort = 587

var knownServers = map[string]string{
	"gmail.com":   "smtp.gmail.com",
	"outlook.com": "smtp-mail.outlook.com",
	"hotmail.com": "smtp-mail.outlook.com",
	"yahoo.com":   "smtp.mail.yahoo.com",
}

type Options struct {
	From     string
	Password string
	// Host and Port override the server derived from the sender domain.
	Host      string
	Port      int
	Timeout   time.Duration
	TLSConfig *tls.Config
}

// Mailer sends plain-text reminder mail through an authenticated SMTP
// submission server.
type Mailer struct {
	opts Options
}

func New(opts Options) *Mailer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Mailer{opts: opts}
}

// ServerFor maps a sender address to its provider's submission server.
func ServerFor(email string) (string, int) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "", defaultPort
	}
	domainPart := strings.ToLower(email[at+1:])
	if host, ok := knownServers[domainPart]; ok {
		return host, defaultPort
	}
	return "smtp." + domainPart, defaultPort
}

func (m *Mailer) address() (string, int) {
	host, port := ServerFor(m.opts.From)
	if m.opts.Host != "" {
		host = m.opts.Host
	}
	if m.opts.Port > 0 {
		port = m.opts.Port
	}
	return host, port
}

// Dial connects, upgrades with STARTTLS when offered and logs in.
func (m *Mailer) Dial(ctx context.Context) (ports.MailSession, error) {
	if m.opts.From == "" || m.opts.Password == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "smtp dial", fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD must be set"))
	}
	host, port := m.address()
	if host == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "smtp dial", fmt.Errorf("cannot derive server from %q", m.opts.From))
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(m.opts.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.opts.From),
		mail.WithPassword(m.opts.Password),
	}
	if m.opts.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(m.opts.TLSConfig))
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "smtp client", err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		if isAuthFailure(err) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "smtp auth", err)
		}
		return nil, fmt.Errorf("connect %s: %w", host, err)
	}
	return &session{client: client, from: m.opts.From}, nil
}

// isAuthFailure matches the 530-539 replies servers use for rejected logins.
func isAuthFailure(err error) bool {
	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code >= 530 && reply.Code < 540
}

type session struct {
	client *mail.Client
	from   string
}

// Send rejects the message before talking to the server when an address does
// not parse. A refused recipient resets the transaction and leaves the session
// usable for the next message.
func (s *session) Send(_ context.Context, email ports.Email) error {
	msg, err := newMessage(s.from, email)
	if err != nil {
		return err
	}
	if err := s.client.Send(msg); err != nil {
		return fmt.Errorf("send to %s: %w", email.To, err)
	}
	return nil
}

func (s *session) Close() error {
	return s.client.Close()
}

func newMessage(from string, email ports.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "smtp sender", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "smtp recipient", err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, email.Body)
	return msg, nil
}
