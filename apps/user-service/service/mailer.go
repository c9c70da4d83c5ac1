package service

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// Mailer 邮件发送接口
type Mailer interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
}

// resendMailer 通过Resend API发送邮件
type resendMailer struct {
	client    *resend.Client
	fromEmail string
}

// NewResendMailer 创建Resend邮件发送器
func NewResendMailer(apiKey, fromEmail string) Mailer {
	return &resendMailer{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

// SendVerificationCode 发送注册验证码邮件
func (m *resendMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{toEmail},
		Subject: "Email Verification",
		Text:    fmt.Sprintf("Your verification code is: %s", code),
	}

	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
