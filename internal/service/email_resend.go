package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers the verification and password-reset mails through
// the Resend API. Links point at the requesting origin so the frontend that
// initiated the flow receives the token back.
type ResendEmailSender struct {
	client     *resend.Client
	from       string
	appBaseURL string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil
	}
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

func (s *ResendEmailSender) SendVerificationMail(ctx context.Context, to string, origin string, token string) error {
	link := s.buildURL(origin, "/verify-email", token)
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
			<h1>Welcome to Blog App!</h1>
			<p>Before you dive into reading and writing, please confirm your email address to activate your account.</p>
			<p><a href="%s">Verify Email Address</a></p>
			<p>If you did not create an account with us, you can safely ignore this email.</p>
		</div>`, link)

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("Blog App <%s>", s.from),
		To:      []string{to},
		Subject: "Confirm your email address",
		Html:    html,
		Text:    fmt.Sprintf("Verify your email address: %s", link),
	})
	return err
}

func (s *ResendEmailSender) SendForgotPasswordMail(ctx context.Context, to string, origin string, token string) error {
	link := s.buildURL(origin, "/reset-password", token)
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Password Reset Request</h2>
			<p>We received a request to reset the password for your account.</p>
			<p><a href="%s">Reset My Password</a></p>
			<p>If you didn't request this, you can safely ignore this email. Your password will remain unchanged.</p>
		</div>`, link)

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("Blog App Support <%s>", s.from),
		To:      []string{to},
		Subject: "Reset your password",
		Html:    html,
		Text:    fmt.Sprintf("Reset your password: %s", link),
	})
	return err
}

func (s *ResendEmailSender) buildURL(origin string, path string, token string) string {
	base := strings.TrimRight(origin, "/")
	if base == "" {
		base = s.appBaseURL
	}
	return fmt.Sprintf("%s%s?token=%s", base, path, token)
}
