package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	appURL       string
}

type PasswordResetData struct {
	ResetLink   string
	UserEmail   string
	ExpiryHours int
}

type BookingConfirmationData struct {
	VehicleName string
	PickupDate  string
	ReturnDate  string
	TotalPrice  string
	BookingsURL string
}

func NewEmailService(smtpHost, smtpPort, smtpUsername, smtpPassword, fromEmail, fromName, appURL string) *EmailService {
	return &EmailService{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: smtpUsername,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		fromName:     fromName,
		appURL:       appURL,
	}
}

func (s *EmailService) SendPasswordResetEmail(to, resetToken string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, resetToken)

	data := PasswordResetData{
		ResetLink:   resetLink,
		UserEmail:   to,
		ExpiryHours: 1,
	}

	tmpl, err := template.ParseFS(templateFS, "templates/password_reset.html")
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := "Password Reset Request - RentWheels"
	message := s.buildEmailMessage(to, subject, body.String())

	if err := s.sendEmail(to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *EmailService) SendBookingConfirmation(to, vehicleName string, pickupDate, returnDate time.Time, totalPrice float64) error {
	data := BookingConfirmationData{
		VehicleName: vehicleName,
		PickupDate:  pickupDate.Format("Mon, 02 Jan 2006"),
		ReturnDate:  returnDate.Format("Mon, 02 Jan 2006"),
		TotalPrice:  fmt.Sprintf("%.2f", totalPrice),
		BookingsURL: fmt.Sprintf("%s/my-bookings", s.appURL),
	}

	tmpl, err := template.ParseFS(templateFS, "templates/booking_confirmation.html")
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := "Booking Confirmed - RentWheels"
	message := s.buildEmailMessage(to, subject, body.String())

	if err := s.sendEmail(to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *EmailService) buildEmailMessage(to, subject, htmlBody string) []byte {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + htmlBody

	return []byte(message)
}

func (s *EmailService) sendEmail(to string, message []byte) error {
	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.smtpHost,
	}

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)

	// For port 587 (TLS), use STARTTLS
	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err = conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err = conn.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if err = conn.Mail(s.fromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	_, err = w.Write(message)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	return conn.Quit()
}
