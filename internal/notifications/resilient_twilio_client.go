package notifications

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/resilience"
)

// ResilientTwilioClient wraps an SMS client with circuit breaker and
// retry logic
type ResilientTwilioClient struct {
	client  SMSClientInterface
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewResilientTwilioClient creates a new resilient Twilio client
func NewResilientTwilioClient(accountSid, authToken, fromNumber string, breaker *resilience.CircuitBreaker) *ResilientTwilioClient {
	client := NewTwilioClient(accountSid, authToken, fromNumber)
	return NewResilientTwilioClientWithClient(client, breaker)
}

// NewResilientTwilioClientWithClient creates a resilient wrapper around an
// existing client
func NewResilientTwilioClientWithClient(client SMSClientInterface, breaker *resilience.CircuitBreaker) *ResilientTwilioClient {
	if breaker == nil {
		breakerSettings := resilience.Settings{
			Name:             "twilio-sms",
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		}

		breaker = resilience.NewCircuitBreaker(breakerSettings, func(ctx context.Context, err error) (interface{}, error) {
			logger.Error("twilio circuit breaker open, SMS send skipped", zap.Error(err))
			return "", err
		})
	}

	retryConfig := resilience.DefaultRetryConfig()
	retryConfig.MaxAttempts = 3
	retryConfig.InitialBackoff = 1 * time.Second
	retryConfig.MaxBackoff = 10 * time.Second
	retryConfig.RetryableChecker = isTwilioRetryable

	return &ResilientTwilioClient{
		client:  client,
		breaker: breaker,
		retry:   retryConfig,
	}
}

// SendSMS sends an SMS message with retry and circuit breaker
func (r *ResilientTwilioClient) SendSMS(to, body string) (string, error) {
	result, err := resilience.RetryWithBreaker(context.Background(), r.retry, r.breaker, func(ctx context.Context) (interface{}, error) {
		return r.client.SendSMS(to, body)
	})
	if err != nil {
		logger.Error("failed to send SMS after retries",
			zap.Error(err),
			zap.String("to", maskPhoneNumber(to)))
		return "", err
	}
	return result.(string), nil
}

// isTwilioRetryable determines if a Twilio error should be retried
func isTwilioRetryable(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	retryable := []string{
		"20429", // too many requests
		"20500", // internal server error
		"20503", // service unavailable
		"30001", // queue overflow
		"timeout",
		"connection",
		"network",
	}
	for _, code := range retryable {
		if strings.Contains(errMsg, code) {
			return true
		}
	}

	nonRetryable := []string{
		"21211", // invalid 'To' phone number
		"21212", // invalid 'From' phone number
		"21408", // permission denied
		"21614", // 'To' number is not a valid mobile number
		"invalid",
		"unauthorized",
		"forbidden",
	}
	for _, code := range nonRetryable {
		if strings.Contains(errMsg, code) {
			return false
		}
	}

	return true
}

// maskPhoneNumber masks a phone number for logging (show only last 4 digits)
func maskPhoneNumber(phoneNumber string) string {
	if len(phoneNumber) <= 4 {
		return "***"
	}
	return "***" + phoneNumber[len(phoneNumber)-4:]
}
