package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSafetyAlert(toEmail, studentName, reason string) error
	SendTopUpReceipt(toEmail string, credits int, orderId string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendSafetyAlert notifies a guardian that a submission was blocked by the
// content safety check.
func (s *emailService) SendSafetyAlert(toEmail, studentName, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Fun Writing: a submission needs your attention")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Content Safety Alert</h2>
			<p>A recent writing submission by <b>%s</b> was flagged by our safety check and was not evaluated.</p>
			<p>Reason: %s</p>
			<p>No action is required; we only want to keep you informed.</p>
		</div>
	`, studentName, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send safety alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Safety alert sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendTopUpReceipt(toEmail string, credits int, orderId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Fun Writing credits are ready!")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you for your purchase!</h2>
			<p><b>%d credits</b> have been added to your account.</p>
			<p>Order reference: %s</p>
			<p><a href="%s/app">Start creating</a></p>
		</div>
	`, credits, orderId, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send receipt to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
