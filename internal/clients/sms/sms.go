// Package sms dispatches one-time passcodes to phones. When SMS integration
// is disabled the service runs with a logging stub instead of the carrier
// client, so the rest of the flow is identical in every environment.
package sms

import (
	"context"
	"log/slog"

	"custodia/internal/platform/httpclient"
)

// Sender delivers an OTP to a phone number.
type Sender interface {
	Send(ctx context.Context, phoneNumber, otp string) error
}

// HTTPSender posts messages to the SMS carrier gateway.
type HTTPSender struct {
	http    *httpclient.Client
	baseURL string
}

func NewHTTPSender(http *httpclient.Client, baseURL string) *HTTPSender {
	return &HTTPSender{http: http, baseURL: baseURL}
}

func (s *HTTPSender) Send(ctx context.Context, phoneNumber, otp string) error {
	return s.http.PostJSON(ctx, s.baseURL+"/v1/messages", map[string]string{
		"phoneNumber": phoneNumber,
		"message":     "Your verification code is " + otp,
	}, nil)
}

// LogSender logs instead of sending. The OTP itself is never logged.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, phoneNumber, _ string) error {
	s.logger.InfoContext(ctx, "sms integration disabled, skipping send",
		"phone_suffix", suffix(phoneNumber))
	return nil
}

func suffix(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}
