package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"careconnect/internal/logger"
)

// Config 는 Mailgun 발송 설정이다.
type Config struct {
	MailgunDomain string
	MailgunAPIKey string
	FromEmail     string
	FromName      string
}

func (c Config) IsConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

// Validate 는 발송에 필요한 값이 모두 있는지 확인한다. 첫 번째 누락 항목만 보고한다.
func (c Config) Validate() error {
	switch {
	case c.MailgunDomain == "":
		return errors.New("MAILGUN_DOMAIN is required")
	case c.MailgunAPIKey == "":
		return errors.New("MAILGUN_API_KEY is required")
	case c.FromEmail == "":
		return errors.New("EMAIL_FROM_ADDRESS is required")
	case c.FromName == "":
		return errors.New("EMAIL_FROM_NAME is required")
	}
	return nil
}

type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender 는 메일 발송 추상화다. 성공 시 provider 의 message id 를 돌려준다.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type MailgunSender struct {
	cfg    Config
	client *mailgun.MailgunImpl
}

// NewMailgunSender 는 설정이 불완전하면 에러를 반환한다.
func NewMailgunSender(cfg Config) (*MailgunSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MailgunSender{
		cfg:    cfg,
		client: mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
	}, nil
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}
	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)

	m := s.client.NewMessage(from, msg.Subject, msg.Text, to)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(msg.ReplyTo)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, id, err := s.client.Send(sendCtx, m)
	if err != nil {
		logger.ErrorWithFields("mailgun send failed", logger.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
			"error":   err.Error(),
		})
		return "", err
	}

	logger.InfoWithFields("mail sent", logger.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"message_id": id,
	})
	return id, nil
}
