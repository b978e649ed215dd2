package lib

import (
	"bytes"
	"context"
	"errors"

	"eventreg/src/config"

	"github.com/wneessen/go-mail"
)

var ErrSMTPNotConfigured = errors.New("SMTP_HOST is not set")

func GetSMTPClient(cfg config.SMTPConfig) (*mail.Client, error) {
	if cfg.Host == "" {
		return nil, ErrSMTPNotConfigured
	}
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Port == 25 || cfg.Port == 1025 {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(cfg.Host, opts...)
}

// InlineFile is embedded in the message and referenced from HTML as cid:Name.
type InlineFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
	Inline   []InlineFile
}

// BuildMessage assembles the message without touching the network.
func BuildMessage(in *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(in.FromName, in.From); err != nil {
		return nil, err
	}
	if err := msg.To(in.To...); err != nil {
		return nil, err
	}
	if in.ReplyTo != "" {
		if err := msg.ReplyTo(in.ReplyTo); err != nil {
			return nil, err
		}
	}
	msg.Subject(in.Subject)
	if in.Html {
		msg.SetBodyString(mail.TypeTextHTML, in.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, in.Body)
	}
	for _, f := range in.Inline {
		if err := msg.EmbedReader(f.Name, bytes.NewReader(f.Data), mail.WithFileContentType(mail.ContentType(f.ContentType))); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func SendMail(ctx context.Context, cfg config.SMTPConfig, in *SendMailInput) error {
	msg, err := BuildMessage(in)
	if err != nil {
		return err
	}
	c, err := GetSMTPClient(cfg)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}
