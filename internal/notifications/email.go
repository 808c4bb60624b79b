package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailClient handles email operations
type EmailClient struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
}

// NewEmailClient creates a new email client
func NewEmailClient(smtpHost, smtpPort, username, password, fromEmail, fromName string) *EmailClient {
	return &EmailClient{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: username,
		smtpPassword: password,
		fromEmail:    fromEmail,
		fromName:     fromName,
	}
}

// EmailData represents data for email templates
type EmailData struct {
	RecipientName string
	Body          string
	Data          map[string]interface{}
}

// SendEmail sends a plain text email
func (e *EmailClient) SendEmail(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", from, to, subject, body))

	auth := smtp.PlainAuth("", e.smtpUsername, e.smtpPassword, e.smtpHost)
	addr := fmt.Sprintf("%s:%s", e.smtpHost, e.smtpPort)

	if err := smtp.SendMail(addr, auth, e.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendHTMLEmail sends an HTML email
func (e *EmailClient) SendHTMLEmail(to, subject, htmlBody string) error {
	from := fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", from, to, subject, htmlBody))

	auth := smtp.PlainAuth("", e.smtpUsername, e.smtpPassword, e.smtpHost)
	addr := fmt.Sprintf("%s:%s", e.smtpHost, e.smtpPort)

	if err := smtp.SendMail(addr, auth, e.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send HTML email: %w", err)
	}
	return nil
}

// Email templates
const (
	bookingConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1a237e; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .trip-details { background-color: white; padding: 15px; margin: 15px 0; border-radius: 5px; }
        .detail-row { display: flex; justify-content: space-between; padding: 5px 0; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Booking Confirmed</h1>
        </div>
        <div class="content">
            <p>Hi {{.RecipientName}},</p>
            <p>Your transfer is booked. Keep your trip reference handy for any changes.</p>
            <div class="trip-details">
                <h3>Trip Details</h3>
                {{range $key, $value := .Data}}
                <div class="detail-row">
                    <strong>{{$key}}:</strong>
                    <span>{{$value}}</span>
                </div>
                {{end}}
            </div>
        </div>
        <div class="footer">
            <p>&copy; 2026 TaxiBooking. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`

	bookingCancellationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #b71c1c; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .trip-details { background-color: white; padding: 15px; margin: 15px 0; border-radius: 5px; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Booking Cancelled</h1>
        </div>
        <div class="content">
            <p>Hi {{.RecipientName}},</p>
            <p>Your booking has been cancelled. Any refund shown below will arrive within a few business days.</p>
            <div class="trip-details">
                {{range $key, $value := .Data}}
                <div style="display: flex; justify-content: space-between; padding: 5px 0;">
                    <span>{{$key}}</span>
                    <span>{{$value}}</span>
                </div>
                {{end}}
            </div>
        </div>
        <div class="footer">
            <p>&copy; 2026 TaxiBooking. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`
)

// SendBookingConfirmation sends the customer confirmation email
func (e *EmailClient) SendBookingConfirmation(to, name string, details map[string]interface{}) error {
	tmpl, err := template.New("confirmation").Parse(bookingConfirmationTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, EmailData{RecipientName: name, Data: details}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return e.SendHTMLEmail(to, "Your Transfer is Booked", body.String())
}

// SendCancellationNotice sends the customer cancellation email
func (e *EmailClient) SendCancellationNotice(to, name string, details map[string]interface{}) error {
	tmpl, err := template.New("cancellation").Parse(bookingCancellationTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, EmailData{RecipientName: name, Data: details}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return e.SendHTMLEmail(to, "Your Booking Was Cancelled", body.String())
}
