package notifications

// EmailClientInterface defines email operations used by the sink
type EmailClientInterface interface {
	SendEmail(to, subject, body string) error
	SendHTMLEmail(to, subject, htmlBody string) error
	SendBookingConfirmation(to, name string, details map[string]interface{}) error
	SendCancellationNotice(to, name string, details map[string]interface{}) error
}

// SMSClientInterface defines SMS operations used by the sink
type SMSClientInterface interface {
	SendSMS(to, body string) (string, error)
}
