package delivery

import (
	"bytes"
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// Sender hands an issued voucher to its recipient over an out-of-band channel.
type Sender interface {
	Send(ctx context.Context, recipient, token string, qrPNG []byte) error
}

// SMTPConfig holds the connection and identity settings for the email sender.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	BrandName string
}

type smtpSender struct {
	config SMTPConfig
}

// NewSMTPSender creates a Sender that emails vouchers through an SMTP relay.
func NewSMTPSender(config SMTPConfig) Sender {
	return &smtpSender{config: config}
}

// Send emails the voucher token and its QR code to the recipient. The qrPNG
// attachment is optional; when nil the email carries the token text only.
func (s *smtpSender) Send(ctx context.Context, recipient, token string, qrPNG []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("failed to set sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("failed to set recipient address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Your %s voucher", s.config.BrandName))
	msg.SetBodyString(mail.TypeTextHTML, voucherEmailBody(s.config.BrandName, token))

	if qrPNG != nil {
		if err := msg.AttachReader("voucher.png", bytes.NewReader(qrPNG)); err != nil {
			return fmt.Errorf("failed to attach qr code: %w", err)
		}
	}

	client, err := mail.NewClient(s.config.Host,
		mail.WithPort(s.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send voucher email: %w", err)
	}

	return nil
}

func voucherEmailBody(brandName, token string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>%s</h2>
	<p>Here is your single-use voucher. Present the code below or scan the attached QR code at redemption.</p>
	<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
	<p style="color: #999; font-size: 12px;">This voucher can be redeemed exactly once. Do not share it.</p>
</body>
</html>`, brandName, token)
}
