package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"eventreg/src/config"
	"eventreg/src/lib"
	"eventreg/src/models"

	"github.com/rs/zerolog"
)

type Notifier interface {
	RegistrationPaid(ctx context.Context, r *models.Registration) error
}

type SendMailFunc func(ctx context.Context, cfg config.SMTPConfig, in *lib.SendMailInput) error

var paidTemplate = template.Must(template.New("paid").Parse(`<p>Hi {{.Name}},</p>
<p>Your payment for {{.Event}} has been received. Your registration number is <strong>#{{.ID}}</strong> for {{.Qty}} {{if eq .Qty 1}}ticket{{else}}tickets{{end}}.</p>
<p>Please bring this email with you for check-in.</p>
<p><img src="cid:{{.QRCode}}" alt="Check-in code #{{.ID}}" width="200" height="200"></p>`))

type MailNotifier struct {
	cfg       config.SMTPConfig
	eventName string
	send      SendMailFunc
	log       *zerolog.Logger
}

func NewMailNotifier(cfg config.SMTPConfig, eventName string, send SendMailFunc, logger *zerolog.Logger) *MailNotifier {
	if send == nil {
		send = lib.SendMail
	}
	return &MailNotifier{cfg: cfg, eventName: eventName, send: send, log: logger}
}

// RegistrationPaid emails the registrant. It is a no-op without SMTP_HOST.
func (n *MailNotifier) RegistrationPaid(ctx context.Context, r *models.Registration) error {
	if n.cfg.Host == "" {
		n.log.Debug().Uint("registration_id", r.ID).Msg("smtp not configured, skipping confirmation email")
		return nil
	}
	// staff scan the code and check in the decoded registration id
	code, err := lib.QRCodeJPEG(strconv.FormatUint(uint64(r.ID), 10))
	if err != nil {
		return fmt.Errorf("rendering check-in code for registration %d: %w", r.ID, err)
	}
	codeName := fmt.Sprintf("registration-%d.jpeg", r.ID)

	var body bytes.Buffer
	err = paidTemplate.Execute(&body, map[string]any{
		"Name":   r.Name,
		"Event":  n.eventName,
		"ID":     r.ID,
		"Qty":    r.Qty,
		"QRCode": codeName,
	})
	if err != nil {
		return err
	}
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err = n.send(ctx, n.cfg, &lib.SendMailInput{
		From:     from,
		FromName: n.cfg.FromName,
		To:       []string{r.Email},
		Subject:  fmt.Sprintf("Payment received for %s", n.eventName),
		Body:     body.String(),
		Html:     true,
		Inline:   []lib.InlineFile{{Name: codeName, ContentType: "image/jpeg", Data: code}},
	})
	if err != nil {
		return fmt.Errorf("sending confirmation to registration %d: %w", r.ID, err)
	}
	n.log.Info().Uint("registration_id", r.ID).Msg("confirmation email sent")
	return nil
}

type NopNotifier struct{}

func (NopNotifier) RegistrationPaid(context.Context, *models.Registration) error { return nil }
