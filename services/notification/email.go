package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"omnisuite/models"
)

// SMTPMailer sends appointment confirmations over SMTP (STARTTLS on the
// configured port). It is both the direct-mode NotificationService and the
// delivery backend behind the queue worker.
type SMTPMailer struct {
	Host     string
	Port     string
	Sender   string
	Password string
	// Inbox is the operations address copied on every confirmation.
	Inbox string
}

func (m *SMTPMailer) SendAppointmentConfirmation(ctx context.Context, n models.AppointmentNotification) error {
	recipients := []string{m.Inbox}
	if n.Email != "" {
		recipients = append(recipients, n.Email)
	}

	subject := fmt.Sprintf("Appointment Confirmation for %s on %s", orNotProvided(n.FullName, "Client"), n.PreferredDay)
	body := confirmationBody(n)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", m.Sender, m.Password, m.Host)
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.Host+":"+m.Port, auth, m.Sender, recipients, []byte(msg.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send appointment email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send appointment email: %w", ctx.Err())
	}
}

func confirmationBody(n models.AppointmentNotification) string {
	return fmt.Sprintf(`Dear %s,

Thank you for booking an appointment with Omni Suite AI. Below are the details of your appointment:

**Appointment Details:**
- Date: %s
- Time: %s
- Session ID: %s

**Client Information:**
- Name: %s
- Email: %s
- Phone: %s

**Service Information:**
- Selected Service: %s

We will contact you to confirm this appointment. If you need to reschedule or have any questions, please reach out to us at info@omnisuiteai.com.

Best regards,
Omni Suite AI
`,
		orNotProvided(n.FullName, "Client"),
		n.PreferredDay,
		n.PreferredTime,
		n.SessionID,
		orNotProvided(n.FullName, "Not provided"),
		orNotProvided(n.Email, "Not provided"),
		orNotProvided(n.Phone, "Not provided"),
		orNotProvided(n.Service, "Not provided"),
	)
}

func orNotProvided(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
