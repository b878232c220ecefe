package services

import "context"

type EmailSender interface {
	SendOTPEmail(ctx context.Context, toEmail, otpCode string) error
}
