// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/config"
	"github.com/rentloop/rentloop-backend/internal/models"
)

// NotificationService emails tenants about lease lifecycle events. Callers
// fire it on a goroutine after the lifecycle transaction commits; a failed
// email never rolls back a lease transition.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:  db,
		cfg: cfg,
	}
}

func (s *NotificationService) SendLeaseActivatedNotification(lease *models.Lease) {
	user, err := s.tenantUser(lease)
	if err != nil {
		logrus.WithError(err).WithField("lease_id", lease.ID).Error("Failed to resolve tenant for activation email")
		return
	}

	data := map[string]interface{}{
		"TenantName":  user.FullName(),
		"LeaseNumber": lease.LeaseNumber,
		"UnitNumber":  lease.Unit.UnitNumber,
		"StartDate":   lease.StartDate.Format("January 2, 2006"),
		"EndDate":     lease.EndDate.Format("January 2, 2006"),
		"MonthlyRent": fmt.Sprintf("%.2f", lease.MonthlyRent),
	}

	s.deliver(user.Email, "lease_activated", "Your lease is active - "+lease.LeaseNumber, data, lease)
}

func (s *NotificationService) SendLeaseTerminatedNotification(lease *models.Lease) {
	user, err := s.tenantUser(lease)
	if err != nil {
		logrus.WithError(err).WithField("lease_id", lease.ID).Error("Failed to resolve tenant for termination email")
		return
	}

	data := map[string]interface{}{
		"TenantName":  user.FullName(),
		"LeaseNumber": lease.LeaseNumber,
		"UnitNumber":  lease.Unit.UnitNumber,
		"Reason":      lease.TerminationReason,
	}
	if lease.ActualTerminationDate != nil {
		data["TerminationDate"] = lease.ActualTerminationDate.Format("January 2, 2006")
	}

	s.deliver(user.Email, "lease_terminated", "Your lease has ended - "+lease.LeaseNumber, data, lease)
}

func (s *NotificationService) SendLeaseRenewedNotification(lease *models.Lease) {
	user, err := s.tenantUser(lease)
	if err != nil {
		logrus.WithError(err).WithField("lease_id", lease.ID).Error("Failed to resolve tenant for renewal email")
		return
	}

	data := map[string]interface{}{
		"TenantName":  user.FullName(),
		"LeaseNumber": lease.LeaseNumber,
		"StartDate":   lease.StartDate.Format("January 2, 2006"),
		"EndDate":     lease.EndDate.Format("January 2, 2006"),
		"MonthlyRent": fmt.Sprintf("%.2f", lease.MonthlyRent),
	}

	s.deliver(user.Email, "lease_renewed", "Your lease renewal is ready - "+lease.LeaseNumber, data, lease)
}

// Helper methods

func (s *NotificationService) tenantUser(lease *models.Lease) (*models.User, error) {
	if lease.Tenant.User.Email != "" {
		return &lease.Tenant.User, nil
	}

	var profile models.TenantProfile
	if err := s.db.Preload("User").First(&profile, "id = ?", lease.TenantID).Error; err != nil {
		return nil, fmt.Errorf("tenant profile not found: %w", err)
	}
	return &profile.User, nil
}

func (s *NotificationService) deliver(to, templateType, subject string, data map[string]interface{}, lease *models.Lease) {
	tmpl := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("template", templateType).Error("Failed to render email template")
		return
	}

	if err := s.sendEmail(to, subject, body); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lease_id": lease.ID,
			"template": templateType,
		}).Error("Failed to send lease notification email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Email.SMTPHost, s.cfg.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"lease_activated": {
			Subject: "Your lease is active",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome home, {{.TenantName}}!</h2>
	<p>Your lease {{.LeaseNumber}} for unit {{.UnitNumber}} is now active.</p>
	<p>Term: {{.StartDate}} through {{.EndDate}}<br>Monthly rent: ${{.MonthlyRent}}</p>
	<p>Best regards,<br>The Rentloop Team</p>
</body>
</html>`,
		},
		"lease_terminated": {
			Subject: "Your lease has ended",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.TenantName}},</h2>
	<p>Your lease {{.LeaseNumber}} for unit {{.UnitNumber}} has been terminated{{if .TerminationDate}} effective {{.TerminationDate}}{{end}}.</p>
	{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
	<p>Best regards,<br>The Rentloop Team</p>
</body>
</html>`,
		},
		"lease_renewed": {
			Subject: "Your lease renewal is ready",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.TenantName}},</h2>
	<p>A renewal lease {{.LeaseNumber}} has been drafted for you.</p>
	<p>New term: {{.StartDate}} through {{.EndDate}}<br>Monthly rent: ${{.MonthlyRent}}</p>
	<p>It takes effect once your property manager activates it.</p>
	<p>Best regards,<br>The Rentloop Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
