package notifications

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmailClient fails every send with a permanent SMTP error so the
// retry layer gives up after one attempt per call.
type countingEmailClient struct {
	calls atomic.Int64
}

func (c *countingEmailClient) SendEmail(to, subject, body string) error {
	c.calls.Add(1)
	return errors.New("550 mailbox unavailable")
}

func (c *countingEmailClient) SendHTMLEmail(to, subject, htmlBody string) error {
	return c.SendEmail(to, subject, htmlBody)
}

func (c *countingEmailClient) SendBookingConfirmation(to, name string, details map[string]interface{}) error {
	return c.SendEmail(to, "", "")
}

func (c *countingEmailClient) SendCancellationNotice(to, name string, details map[string]interface{}) error {
	return c.SendEmail(to, "", "")
}

func TestEmailBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &countingEmailClient{}
	client := NewResilientEmailClientWithClient(inner, nil)

	// Permanent errors are not retried, so each call costs one attempt.
	for i := 0; i < 5; i++ {
		require.Error(t, client.SendEmail("anna@example.com", "subject", "body"))
	}
	callsWhenOpen := inner.calls.Load()
	assert.Equal(t, int64(5), callsWhenOpen)

	// The breaker is open now; further sends fail fast without reaching
	// the SMTP client.
	require.Error(t, client.SendEmail("anna@example.com", "subject", "body"))
	assert.Equal(t, callsWhenOpen, inner.calls.Load())
}

func TestTwilioRetryableErrorClassification(t *testing.T) {
	assert.True(t, isTwilioRetryable(errors.New("20503 service unavailable")))
	assert.True(t, isTwilioRetryable(errors.New("connection reset by peer")))
	assert.False(t, isTwilioRetryable(errors.New("21211 invalid 'To' phone number")))
	assert.False(t, isTwilioRetryable(nil))
}

func TestEmailRetryableErrorClassification(t *testing.T) {
	assert.True(t, isEmailRetryable(errors.New("421 service not available, try again")))
	assert.False(t, isEmailRetryable(errors.New("550 mailbox unavailable")))
	assert.False(t, isEmailRetryable(nil))
}

func TestMaskHelpers(t *testing.T) {
	assert.Equal(t, "***1122", maskPhoneNumber("+41790001122"))
	assert.Equal(t, "***", maskPhoneNumber("41"))
	assert.Equal(t, "a***@example.com", maskEmail("anna@example.com"))
	assert.Equal(t, "***", maskEmail("a@"))
}
