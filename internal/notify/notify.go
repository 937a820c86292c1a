// Package notify sends out-of-band email alerts over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/config"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending alert emails via SMTP. It is disabled when no SMTP
// host or alert address is configured.
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether the sender has enough configuration to deliver.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.AlertEmail != ""
}

// BudgetExceeded notifies that accumulated spending has passed the budget limit.
func (s *Sender) BudgetExceeded(username string, spent, budget decimal.Decimal) {
	if !s.Enabled() {
		return
	}
	subject := "Budget Exceeded Notification"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your spending has reached %s %s, which exceeds your budget of %s %s.\n"+
			"Time: %s\n"+
			"\nBest regards,\nFinance Tracker",
		username, spent, s.cfg.Currency, budget, s.cfg.Currency,
		time.Now().Format("2006-01-02 15:04:05"),
	)
	s.send(subject, body)
}

// RecurringApplied notifies that due recurring charges were applied.
func (s *Sender) RecurringApplied(username string, count int, total decimal.Decimal) {
	if !s.Enabled() {
		return
	}
	subject := "Recurring Charges Applied"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"%d recurring charges totaling %s %s were applied to your account.\n"+
			"Time: %s\n"+
			"\nBest regards,\nFinance Tracker",
		username, count, total, s.cfg.Currency,
		time.Now().Format("2006-01-02 15:04:05"),
	)
	s.send(subject, body)
}

func (s *Sender) send(subject, body string) {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AlertEmail}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", s.cfg.AlertEmail, err)
		return
	}
	s.logger.Infof("Email sent to %s: %s", s.cfg.AlertEmail, subject)
}
