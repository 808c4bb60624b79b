package notifications

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/resilience"
)

// ResilientEmailClient wraps an email client with circuit breaker and
// retry logic
type ResilientEmailClient struct {
	client  EmailClientInterface
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewResilientEmailClient creates a new resilient email client
func NewResilientEmailClient(smtpHost, smtpPort, username, password, fromEmail, fromName string, breaker *resilience.CircuitBreaker) *ResilientEmailClient {
	client := NewEmailClient(smtpHost, smtpPort, username, password, fromEmail, fromName)
	return NewResilientEmailClientWithClient(client, breaker)
}

// NewResilientEmailClientWithClient creates a resilient wrapper around an
// existing client
func NewResilientEmailClientWithClient(client EmailClientInterface, breaker *resilience.CircuitBreaker) *ResilientEmailClient {
	if breaker == nil {
		breakerSettings := resilience.Settings{
			Name:             "smtp-email",
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		}

		breaker = resilience.NewCircuitBreaker(breakerSettings, func(ctx context.Context, err error) (interface{}, error) {
			logger.Error("email circuit breaker open, send skipped", zap.Error(err))
			return nil, err
		})
	}

	// Email retries are less aggressive since mail can tolerate delay.
	retryConfig := resilience.DefaultRetryConfig()
	retryConfig.MaxAttempts = 3
	retryConfig.InitialBackoff = 2 * time.Second
	retryConfig.MaxBackoff = 15 * time.Second
	retryConfig.RetryableChecker = isEmailRetryable

	return &ResilientEmailClient{
		client:  client,
		breaker: breaker,
		retry:   retryConfig,
	}
}

func (r *ResilientEmailClient) send(name string, op func() error) error {
	_, err := resilience.RetryWithBreaker(context.Background(), r.retry, r.breaker, func(ctx context.Context) (interface{}, error) {
		return nil, op()
	})
	if err != nil {
		logger.Error("failed to send email after retries",
			zap.String("email_kind", name), zap.Error(err))
	}
	return err
}

// SendEmail sends a plain text email with retry and circuit breaker
func (r *ResilientEmailClient) SendEmail(to, subject, body string) error {
	return r.send("plain", func() error { return r.client.SendEmail(to, subject, body) })
}

// SendHTMLEmail sends an HTML email with retry and circuit breaker
func (r *ResilientEmailClient) SendHTMLEmail(to, subject, htmlBody string) error {
	return r.send("html", func() error { return r.client.SendHTMLEmail(to, subject, htmlBody) })
}

// SendBookingConfirmation sends the confirmation email with retry and
// circuit breaker
func (r *ResilientEmailClient) SendBookingConfirmation(to, name string, details map[string]interface{}) error {
	return r.send("booking_confirmation", func() error {
		return r.client.SendBookingConfirmation(to, name, details)
	})
}

// SendCancellationNotice sends the cancellation email with retry and
// circuit breaker
func (r *ResilientEmailClient) SendCancellationNotice(to, name string, details map[string]interface{}) error {
	return r.send("cancellation_notice", func() error {
		return r.client.SendCancellationNotice(to, name, details)
	})
}

// isEmailRetryable determines if an SMTP error should be retried
func isEmailRetryable(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())

	// 4xx SMTP codes are transient, 5xx are permanent.
	permanent := []string{
		"550", // mailbox unavailable
		"551", // user not local
		"552", // storage exceeded
		"553", // mailbox name not allowed
		"554", // transaction failed
		"authentication failed",
		"invalid",
	}
	for _, marker := range permanent {
		if strings.Contains(errMsg, marker) {
			return false
		}
	}
	return true
}

// maskEmail masks an email address for logging
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
