// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/config"
	"github.com/agrimart/agrimart-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	template := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":         user.Name,
		"StoreURL":     s.config.Frontend.BaseURL,
		"PlatformName": "AgriMart",
	}

	subject := "Welcome to AgriMart"
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendOrderConfirmation(order *models.Order, email string) error {
	if email == "" {
		return nil
	}

	template := s.getEmailTemplate("order_confirmation")

	data := map[string]interface{}{
		"OrderNumber": order.OrderNumber,
		"Total":       order.Total.StringFixed(2),
		"Status":      order.Status,
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.OrderNumber),
	}

	subject := "Order Confirmation - " + order.OrderNumber
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(email, subject, body)
}

func (s *NotificationService) SendBookingReceived(booking *models.PreHarvestBooking) error {
	// Notify the listing owner about the new booking.
	var listing models.PreHarvestListing
	if err := s.db.Preload("User").First(&listing, booking.ListingID).Error; err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}

	template := s.getEmailTemplate("booking_received")

	data := map[string]interface{}{
		"SellerName":   listing.User.Name,
		"ListingTitle": listing.Title,
		"BuyerName":    booking.BuyerName,
		"Quantity":     booking.Quantity.StringFixed(2),
		"Deposit":      booking.DepositAmount.StringFixed(2),
		"BookingURL":   fmt.Sprintf("%s/pre-harvest/bookings/%s", s.config.Frontend.BaseURL, booking.ID),
	}

	subject := "New Booking - " + listing.Title
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(listing.User.Email, subject, body)
}

func (s *NotificationService) SendBookingConfirmed(booking *models.PreHarvestBooking) error {
	template := s.getEmailTemplate("booking_confirmed")

	data := map[string]interface{}{
		"BuyerName":    booking.BuyerName,
		"ListingTitle": booking.Listing.Title,
		"Quantity":     booking.Quantity.StringFixed(2),
		"HarvestDate":  booking.Listing.HarvestDate.Format("2006-01-02"),
	}

	subject := "Booking Confirmed - " + booking.Listing.Title
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(booking.BuyerEmail, subject, body)
}

func (s *NotificationService) SendBookingCancelled(booking *models.PreHarvestBooking) error {
	template := s.getEmailTemplate("booking_cancelled")

	data := map[string]interface{}{
		"BuyerName":    booking.BuyerName,
		"ListingTitle": booking.Listing.Title,
		"Refunded":     booking.DepositPaid,
		"Deposit":      booking.DepositAmount.StringFixed(2),
	}

	subject := "Booking Cancelled - " + booking.Listing.Title
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(booking.BuyerEmail, subject, body)
}

func (s *NotificationService) SendBusinessApproved(business *models.Business) error {
	template := s.getEmailTemplate("business_approved")

	creditLimit := "0.00"
	if business.CreditLimit != nil {
		creditLimit = business.CreditLimit.StringFixed(2)
	}

	data := map[string]interface{}{
		"ContactName":  business.ContactName,
		"CompanyName":  business.CompanyName,
		"CreditLimit":  creditLimit,
		"PaymentTerms": business.PaymentTerms,
		"PortalURL":    fmt.Sprintf("%s/b2b", s.config.Frontend.BaseURL),
	}

	subject := "Business Account Approved - " + business.CompanyName
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(business.Email, subject, body)
}

func (s *NotificationService) SendBusinessRejected(business *models.Business, reason string) error {
	template := s.getEmailTemplate("business_rejected")

	data := map[string]interface{}{
		"ContactName": business.ContactName,
		"CompanyName": business.CompanyName,
		"Reason":      reason,
	}

	subject := "Business Application Update - " + business.CompanyName
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(business.Email, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
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
		"welcome": {
			Subject: "Welcome to AgriMart",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thank you for joining AgriMart. Browse fresh produce and pre-harvest offers here:</p>
	<a href="{{.StoreURL}}">Visit the store</a>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Order {{.OrderNumber}} received</h2>
	<p>Total: {{.Total}}</p>
	<p>Status: {{.Status}}</p>
	<a href="{{.OrderURL}}">View your order</a>
	<p>Best regards,<br>AgriMart Team</p>
</body>
</html>`,
		},
		"booking_received": {
			Subject: "New Booking",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>New booking on "{{.ListingTitle}}"</h2>
	<p>Hello {{.SellerName}},</p>
	<p>{{.BuyerName}} booked {{.Quantity}} kg. Deposit due on confirmation: {{.Deposit}}.</p>
	<a href="{{.BookingURL}}">Review and confirm</a>
	<p>Best regards,<br>AgriMart Team</p>
</body>
</html>`,
		},
		"booking_confirmed": {
			Subject: "Booking Confirmed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Your booking is confirmed!</h2>
	<p>Hello {{.BuyerName}},</p>
	<p>Your booking of {{.Quantity}} kg from "{{.ListingTitle}}" is confirmed.</p>
	<p>Expected harvest date: {{.HarvestDate}}.</p>
	<p>Best regards,<br>AgriMart Team</p>
</body>
</html>`,
		},
		"business_approved": {
			Subject: "Business Account Approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>{{.CompanyName}} is approved!</h2>
	<p>Hello {{.ContactName}},</p>
	<p>Your wholesale account is active. Credit limit: {{.CreditLimit}}, payment terms: {{.PaymentTerms}}.</p>
	<a href="{{.PortalURL}}">Open the B2B portal</a>
	<p>Best regards,<br>AgriMart Team</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
